package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"
)

const progressTable = "progress"

// maxUpdateAttempts bounds optimistic retries for a single Update.
const maxUpdateAttempts = 3

var progressColumns = []string{
	"id", "user_id", "collection_id", "item_id",
	"strength", "ease_factor", "interval_days",
	"review_count", "correct_count", "incorrect_count",
	"last_reviewed_at", "next_review_at",
	"version", "created_at", "updated_at",
}

// progressRepo implements ProgressRepo with ent's SQL builder and sqlx.
type progressRepo struct {
	db      *sqlx.DB
	dialect string
	now     func() time.Time
}

func (r *progressRepo) Get(ctx context.Context, key ProgressKey) (*ProgressRow, error) {
	row, err := r.get(ctx, r.db, key)
	if err != nil {
		return nil, fmt.Errorf("get progress %s: %w", key, err)
	}
	return row, nil
}

func (r *progressRepo) List(ctx context.Context, userID, collectionID string) ([]ProgressRow, error) {
	query, args := entsql.Dialect(r.dialect).
		Select(progressColumns...).
		From(entsql.Dialect(r.dialect).Table(progressTable)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("collection_id", collectionID),
		)).
		OrderBy("item_id").
		Query()

	var rows []ProgressRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list progress %s/%s: %w", userID, collectionID, err)
	}
	return rows, nil
}

func (r *progressRepo) Update(ctx context.Context, key ProgressKey, fn UpdateFunc) (*ProgressRow, error) {
	for range maxUpdateAttempts {
		row, err := r.tryUpdate(ctx, key, fn)
		if errors.Is(err, ErrConflict) || isBusy(err) {
			continue
		}
		return row, err
	}
	return nil, fmt.Errorf("update progress %s: %w", key, ErrConflict)
}

func (r *progressRepo) DeleteCollection(ctx context.Context, userID, collectionID string) (int64, error) {
	query, args := entsql.Dialect(r.dialect).
		Delete(progressTable).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("collection_id", collectionID),
		)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete progress %s/%s: %w", userID, collectionID, err)
	}
	return res.RowsAffected()
}

// tryUpdate runs one read-modify-write inside a transaction. A concurrent
// insert of the same key or a version mismatch yields ErrConflict.
func (r *progressRepo) tryUpdate(ctx context.Context, key ProgressKey, fn UpdateFunc) (_ *ProgressRow, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	existing, err := r.get(ctx, tx, key)
	if err != nil {
		return nil, fmt.Errorf("read progress %s: %w", key, err)
	}

	var input *ProgressRow
	if existing != nil {
		cp := *existing
		input = &cp
	}
	next, err := fn(input)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, fmt.Errorf("update progress %s: update func returned no row", key)
	}

	now := r.now().UTC()
	saved := *next
	saved.UserID, saved.CollectionID, saved.ItemID = key.UserID, key.CollectionID, key.ItemID
	saved.LastReviewedAt = next.LastReviewedAt.UTC()
	saved.NextReviewAt = next.NextReviewAt.UTC()
	saved.UpdatedAt = now
	if existing == nil {
		saved.Version = 1
		saved.CreatedAt = now
		saved.ID, err = r.insert(ctx, tx, &saved)
	} else {
		saved.ID = existing.ID
		saved.Version = existing.Version + 1
		saved.CreatedAt = existing.CreatedAt
		err = r.update(ctx, tx, existing.Version, &saved)
	}
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit progress %s: %w", key, err)
	}
	return &saved, nil
}

// insert writes a new row and returns its id. A concurrent insert of the
// same key returns no id and yields ErrConflict.
func (r *progressRepo) insert(ctx context.Context, tx *sqlx.Tx, row *ProgressRow) (int64, error) {
	query, args := entsql.Dialect(r.dialect).
		Insert(progressTable).
		Columns(
			"user_id", "collection_id", "item_id",
			"strength", "ease_factor", "interval_days",
			"review_count", "correct_count", "incorrect_count",
			"last_reviewed_at", "next_review_at",
			"version", "created_at", "updated_at",
		).
		Values(
			row.UserID, row.CollectionID, row.ItemID,
			row.Strength, row.EaseFactor, row.IntervalDays,
			row.ReviewCount, row.CorrectCount, row.IncorrectCount,
			row.LastReviewedAt, row.NextReviewAt,
			row.Version, row.CreatedAt, row.UpdatedAt,
		).
		OnConflict(
			entsql.ConflictColumns("user_id", "collection_id", "item_id"),
			entsql.DoNothing(),
		).
		Returning("id").
		Query()

	var id int64
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("insert progress %s: %w", row.Key(), err)
	}
	return id, nil
}

// update writes row over the stored one if its version is still prev.
func (r *progressRepo) update(ctx context.Context, tx *sqlx.Tx, prev int64, row *ProgressRow) error {
	query, args := entsql.Dialect(r.dialect).
		Update(progressTable).
		Set("strength", row.Strength).
		Set("ease_factor", row.EaseFactor).
		Set("interval_days", row.IntervalDays).
		Set("review_count", row.ReviewCount).
		Set("correct_count", row.CorrectCount).
		Set("incorrect_count", row.IncorrectCount).
		Set("last_reviewed_at", row.LastReviewedAt).
		Set("next_review_at", row.NextReviewAt).
		Set("version", row.Version).
		Set("updated_at", row.UpdatedAt).
		Where(entsql.And(
			entsql.EQ("id", row.ID),
			entsql.EQ("version", prev),
		)).
		Query()

	err := expectOneRow(tx.ExecContext(ctx, query, args...))
	if err != nil && !errors.Is(err, ErrConflict) {
		return fmt.Errorf("update progress %s: %w", row.Key(), err)
	}
	return err
}

func (r *progressRepo) get(ctx context.Context, q sqlx.QueryerContext, key ProgressKey) (*ProgressRow, error) {
	query, args := entsql.Dialect(r.dialect).
		Select(progressColumns...).
		From(entsql.Dialect(r.dialect).Table(progressTable)).
		Where(entsql.And(
			entsql.EQ("user_id", key.UserID),
			entsql.EQ("collection_id", key.CollectionID),
			entsql.EQ("item_id", key.ItemID),
		)).
		Limit(1).
		Query()

	var row ProgressRow
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// expectOneRow turns a write that touched no rows into ErrConflict.
func expectOneRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrConflict
	}
	return nil
}
