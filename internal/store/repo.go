package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrConflict is returned when a progress row kept changing underneath an
// update and the retry budget ran out.
var ErrConflict = errors.New("store: concurrent update conflict")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit        int       // max results (0 = unlimited)
	After        int64     // sequence > After
	From         time.Time // timestamp >= From
	To           time.Time // timestamp <= To
	CollectionID string    // restrict to one collection when set
}

// ProgressKey identifies one progress row.
type ProgressKey struct {
	UserID       string
	CollectionID string
	ItemID       string
}

func (k ProgressKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.UserID, k.CollectionID, k.ItemID)
}

// ProgressRow is the persisted form of an item's spaced repetition state.
type ProgressRow struct {
	ID             int64     `db:"id"`
	UserID         string    `db:"user_id"`
	CollectionID   string    `db:"collection_id"`
	ItemID         string    `db:"item_id"`
	Strength       int       `db:"strength"`
	EaseFactor     float64   `db:"ease_factor"`
	IntervalDays   int       `db:"interval_days"`
	ReviewCount    int       `db:"review_count"`
	CorrectCount   int       `db:"correct_count"`
	IncorrectCount int       `db:"incorrect_count"`
	LastReviewedAt time.Time `db:"last_reviewed_at"`
	NextReviewAt   time.Time `db:"next_review_at"`
	Version        int64     `db:"version"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Key returns the row's identifying key.
func (r *ProgressRow) Key() ProgressKey {
	return ProgressKey{UserID: r.UserID, CollectionID: r.CollectionID, ItemID: r.ItemID}
}

// UpdateFunc computes the next row from the current one. existing is nil when
// no row exists yet. Only the scheduling fields of the returned row are
// written; identity, version and timestamps are managed by the repo.
type UpdateFunc func(existing *ProgressRow) (*ProgressRow, error)

// ProgressRepo manages per-(user, collection, item) progress rows.
type ProgressRepo interface {
	// Get returns the row for key, or nil if none exists.
	Get(ctx context.Context, key ProgressKey) (*ProgressRow, error)

	// List returns every row for a user within a collection.
	List(ctx context.Context, userID, collectionID string) ([]ProgressRow, error)

	// Update performs an atomic read-modify-write of one row. Errors returned
	// by fn are passed through unchanged and nothing is written.
	Update(ctx context.Context, key ProgressKey, fn UpdateFunc) (*ProgressRow, error)

	// DeleteCollection removes every row for a user within a collection and
	// returns the number of rows removed.
	DeleteCollection(ctx context.Context, userID, collectionID string) (int64, error)
}

// ReviewEventData captures a single graded review.
type ReviewEventData struct {
	UserID         string
	CollectionID   string
	ItemID         string
	SessionID      string
	Quality        int
	Correct        bool
	StrengthBefore int
	StrengthAfter  int
	IntervalDays   int
}

// ReviewEventRecord is a persisted review event.
type ReviewEventRecord struct {
	Sequence       int64     `db:"sequence"`
	Timestamp      time.Time `db:"timestamp"`
	UserID         string    `db:"user_id"`
	CollectionID   string    `db:"collection_id"`
	ItemID         string    `db:"item_id"`
	SessionID      string    `db:"session_id"`
	Quality        int       `db:"quality"`
	Correct        bool      `db:"correct"`
	StrengthBefore int       `db:"strength_before"`
	StrengthAfter  int       `db:"strength_after"`
	IntervalDays   int       `db:"interval_days"`
}

// ReviewEventRepo provides append and query access to review events.
type ReviewEventRepo interface {
	// AppendReview records a review event.
	AppendReview(ctx context.Context, data ReviewEventData) error

	// QueryReviews returns a user's review events in sequence order.
	QueryReviews(ctx context.Context, userID string, opts QueryOpts) ([]ReviewEventRecord, error)

	// Accuracy returns the fraction of correct reviews and the number of
	// reviews for a user within a collection.
	Accuracy(ctx context.Context, userID, collectionID string) (float64, int, error)
}
