package mastery

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abhisek/lingo/internal/store"
)

// Key identifies a progress record: one learner, one collection, one item.
type Key = store.ProgressKey

// Outcome is a graded answer for one item, produced by a practice session.
type Outcome struct {
	ItemID  string
	Quality Quality
}

// BatchResult reports what happened to each outcome of ReviewBatch.
type BatchResult struct {
	Records     map[string]*ProgressRecord
	Transitions []*StateTransition
	Failed      []string
}

// Service applies reviews to persisted progress. The scheduling math lives in
// ApplyReview; Service only adds the read-modify-write and event logging.
type Service struct {
	progress store.ProgressRepo
	events   store.ReviewEventRepo
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock injects the time source used for review timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger used for non-fatal warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a mastery service. events may be nil to disable the
// review log.
func NewService(progress store.ProgressRepo, events store.ReviewEventRepo, opts ...Option) *Service {
	s := &Service{
		progress: progress,
		events:   events,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Review applies one graded review to the item identified by key and returns
// the stored record. An invalid quality is rejected before any I/O.
func (s *Service) Review(ctx context.Context, key Key, q Quality) (*ProgressRecord, error) {
	rec, _, err := s.review(ctx, key, "", q)
	return rec, err
}

func (s *Service) review(ctx context.Context, key Key, sessionID string, q Quality) (*ProgressRecord, *StateTransition, error) {
	if err := q.Validate(); err != nil {
		return nil, nil, err
	}

	now := s.now().UTC()
	var before *ProgressRecord
	row, err := s.progress.Update(ctx, key, func(existing *store.ProgressRow) (*store.ProgressRow, error) {
		before = recordFromRow(existing)
		next, err := ApplyReview(key.ItemID, before, q, now)
		if err != nil {
			return nil, err
		}
		return rowFromRecord(next), nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidQuality) {
			return nil, nil, err
		}
		return nil, nil, &PersistenceError{Op: "save review", Key: key, Err: err}
	}

	after := recordFromRow(row)
	s.appendEvent(ctx, key, sessionID, q, before, after)
	return after, Transition(before, after), nil
}

// ReviewBatch applies outcomes in order. Every outcome is attempted; the ones
// that could not be saved are listed in BatchResult.Failed and their errors
// are joined into the returned error.
func (s *Service) ReviewBatch(ctx context.Context, userID, collectionID, sessionID string, outcomes []Outcome) (*BatchResult, error) {
	res := &BatchResult{Records: make(map[string]*ProgressRecord, len(outcomes))}
	var errs []error
	for _, o := range outcomes {
		key := Key{UserID: userID, CollectionID: collectionID, ItemID: o.ItemID}
		rec, tr, err := s.review(ctx, key, sessionID, o.Quality)
		if err != nil {
			res.Failed = append(res.Failed, o.ItemID)
			errs = append(errs, err)
			continue
		}
		res.Records[o.ItemID] = rec
		if tr != nil {
			res.Transitions = append(res.Transitions, tr)
		}
	}
	return res, errors.Join(errs...)
}

// Progress returns a snapshot of every record for a learner within a
// collection, keyed by item ID.
func (s *Service) Progress(ctx context.Context, userID, collectionID string) (map[string]*ProgressRecord, error) {
	rows, err := s.progress.List(ctx, userID, collectionID)
	if err != nil {
		return nil, &PersistenceError{Op: "load progress", Key: Key{UserID: userID, CollectionID: collectionID}, Err: err}
	}
	out := make(map[string]*ProgressRecord, len(rows))
	for i := range rows {
		out[rows[i].ItemID] = recordFromRow(&rows[i])
	}
	return out, nil
}

// Get returns the record for one item, or nil if it has never been reviewed.
func (s *Service) Get(ctx context.Context, key Key) (*ProgressRecord, error) {
	row, err := s.progress.Get(ctx, key)
	if err != nil {
		return nil, &PersistenceError{Op: "load progress", Key: key, Err: err}
	}
	return recordFromRow(row), nil
}

// Reset deletes every record for a learner within a collection.
func (s *Service) Reset(ctx context.Context, userID, collectionID string) (int64, error) {
	n, err := s.progress.DeleteCollection(ctx, userID, collectionID)
	if err != nil {
		return 0, &PersistenceError{Op: "reset progress", Key: Key{UserID: userID, CollectionID: collectionID}, Err: err}
	}
	return n, nil
}

// appendEvent logs the review but never fails it; the progress row is the
// source of truth.
func (s *Service) appendEvent(ctx context.Context, key Key, sessionID string, q Quality, before, after *ProgressRecord) {
	if s.events == nil {
		return
	}
	data := store.ReviewEventData{
		UserID:        key.UserID,
		CollectionID:  key.CollectionID,
		ItemID:        key.ItemID,
		SessionID:     sessionID,
		Quality:       int(q),
		Correct:       q.IsCorrect(),
		StrengthAfter: after.Strength,
		IntervalDays:  after.IntervalDays,
	}
	if before != nil {
		data.StrengthBefore = before.Strength
	}
	if err := s.events.AppendReview(ctx, data); err != nil {
		s.logger.Warn("failed to log review event", "key", key.String(), "error", err)
	}
}

func recordFromRow(row *store.ProgressRow) *ProgressRecord {
	if row == nil {
		return nil
	}
	return &ProgressRecord{
		ItemID:         row.ItemID,
		Strength:       row.Strength,
		EaseFactor:     row.EaseFactor,
		IntervalDays:   row.IntervalDays,
		ReviewCount:    row.ReviewCount,
		CorrectCount:   row.CorrectCount,
		IncorrectCount: row.IncorrectCount,
		LastReviewedAt: row.LastReviewedAt,
		NextReviewAt:   row.NextReviewAt,
	}
}

func rowFromRecord(rec *ProgressRecord) *store.ProgressRow {
	return &store.ProgressRow{
		ItemID:         rec.ItemID,
		Strength:       rec.Strength,
		EaseFactor:     rec.EaseFactor,
		IntervalDays:   rec.IntervalDays,
		ReviewCount:    rec.ReviewCount,
		CorrectCount:   rec.CorrectCount,
		IncorrectCount: rec.IncorrectCount,
		LastReviewedAt: rec.LastReviewedAt,
		NextReviewAt:   rec.NextReviewAt,
	}
}
