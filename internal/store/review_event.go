package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"
)

const reviewEventTable = "review_events"

var reviewEventColumns = []string{
	"sequence", "timestamp", "user_id", "collection_id", "item_id", "session_id",
	"quality", "correct", "strength_before", "strength_after", "interval_days",
}

// eventRepo implements ReviewEventRepo.
type eventRepo struct {
	db      *sqlx.DB
	dialect string
	seq     *sequenceCounter
	now     func() time.Time
}

func (r *eventRepo) AppendReview(ctx context.Context, data ReviewEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(r.dialect).
		Insert(reviewEventTable).
		Columns(reviewEventColumns...).
		Values(
			seqNum, r.now().UTC(), data.UserID, data.CollectionID, data.ItemID, data.SessionID,
			data.Quality, data.Correct, data.StrengthBefore, data.StrengthAfter, data.IntervalDays,
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save review event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryReviews(ctx context.Context, userID string, opts QueryOpts) ([]ReviewEventRecord, error) {
	preds := []*entsql.Predicate{entsql.EQ("user_id", userID)}
	if opts.CollectionID != "" {
		preds = append(preds, entsql.EQ("collection_id", opts.CollectionID))
	}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UTC()))
	}

	sel := entsql.Dialect(r.dialect).
		Select(reviewEventColumns...).
		From(entsql.Dialect(r.dialect).Table(reviewEventTable)).
		Where(entsql.And(preds...)).
		OrderBy("sequence")
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	var events []ReviewEventRecord
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("query review events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) Accuracy(ctx context.Context, userID, collectionID string) (float64, int, error) {
	query, args := entsql.Dialect(r.dialect).
		Select("correct").
		From(entsql.Dialect(r.dialect).Table(reviewEventTable)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("collection_id", collectionID),
		)).
		Query()

	var results []bool
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return 0, 0, fmt.Errorf("query review accuracy: %w", err)
	}

	count := len(results)
	if count == 0 {
		return 0, 0, nil
	}
	correct := 0
	for _, ok := range results {
		if ok {
			correct++
		}
	}
	return float64(correct) / float64(count), count, nil
}
