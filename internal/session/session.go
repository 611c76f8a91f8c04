package session

import (
	"errors"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/lingo/internal/catalog"
	"github.com/abhisek/lingo/internal/mastery"
	"github.com/abhisek/lingo/internal/spacedrep"
)

var (
	// ErrFinished is returned when answering a session with no items left.
	ErrFinished = errors.New("session: finished")
	// ErrNotFinished is returned when results are requested before every
	// question has been answered.
	ErrNotFinished = errors.New("session: not finished")
)

// Answer is one graded response within a session.
type Answer struct {
	ItemID     string
	Quality    mastery.Quality
	AnsweredAt time.Time
}

// Session tracks one pass through a batch of items. It only bookkeeps
// answers; persisting them is the caller's job.
type Session struct {
	ID           string
	UserID       string
	CollectionID string
	LessonID     string

	// Retry is set on sessions created by RetryMissed.
	Retry bool

	Batch        []catalog.Item
	Known        []catalog.Item
	Unknown      []catalog.Item
	CurrentIndex int
	Answers      []Answer

	StartedAt time.Time
	now       func() time.Time
}

// New starts a session over batch. The batch is used in the given order.
func New(userID, collectionID string, batch []catalog.Item, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		CollectionID: collectionID,
		Batch:        batch,
		StartedAt:    now(),
		now:          now,
	}
}

// Current returns the item awaiting an answer.
func (s *Session) Current() (catalog.Item, bool) {
	if s.Finished() {
		return catalog.Item{}, false
	}
	return s.Batch[s.CurrentIndex], true
}

// Finished reports whether every item in the batch has been answered.
func (s *Session) Finished() bool {
	return s.CurrentIndex >= len(s.Batch)
}

// Remaining returns the number of unanswered items.
func (s *Session) Remaining() int {
	return max(0, len(s.Batch)-s.CurrentIndex)
}

// Swipe records a binary answer for the current item: known maps to
// quality 4, unknown to quality 1.
func (s *Session) Swipe(known bool) error {
	return s.Answer(mastery.QualityForSwipe(known))
}

// Answer records a graded answer for the current item and advances. The item
// is appended to Known when q counts as correct and to Unknown otherwise.
func (s *Session) Answer(q mastery.Quality) error {
	if err := q.Validate(); err != nil {
		return err
	}
	item, ok := s.Current()
	if !ok {
		return ErrFinished
	}

	if q.IsCorrect() {
		s.Known = append(s.Known, item)
	} else {
		s.Unknown = append(s.Unknown, item)
	}
	s.Answers = append(s.Answers, Answer{ItemID: item.ID, Quality: q, AnsweredAt: s.now()})
	s.CurrentIndex++
	return nil
}

// Outcomes returns the answers in the form the mastery service consumes.
func (s *Session) Outcomes() []mastery.Outcome {
	out := make([]mastery.Outcome, len(s.Answers))
	for i, a := range s.Answers {
		out[i] = mastery.Outcome{ItemID: a.ItemID, Quality: a.Quality}
	}
	return out
}

// RetryMissed starts a new session over the items answered as unknown,
// reshuffled. It does not touch persisted progress.
func (s *Session) RetryMissed(rng *rand.Rand) (*Session, error) {
	if len(s.Unknown) == 0 {
		return nil, spacedrep.ErrNoItemsAvailable
	}
	batch := slices.Clone(s.Unknown)
	spacedrep.Shuffle(batch, rng)

	retry := New(s.UserID, s.CollectionID, batch, s.now)
	retry.LessonID = s.LessonID
	retry.Retry = true
	return retry, nil
}

// Restart reshuffles the same batch and clears every answer, for another
// flash pass over the same items.
func (s *Session) Restart(rng *rand.Rand) {
	spacedrep.Shuffle(s.Batch, rng)
	s.Known = nil
	s.Unknown = nil
	s.Answers = nil
	s.CurrentIndex = 0
}

// Summary describes a session's results.
type Summary struct {
	Duration time.Duration
	Total    int
	Answered int
	Known    int
	Unknown  int
	Accuracy float64
	Missed   []catalog.Item
}

// Summary builds a Summary from the session's answers so far.
func (s *Session) Summary() Summary {
	sum := Summary{
		Duration: s.now().Sub(s.StartedAt),
		Total:    len(s.Batch),
		Answered: len(s.Answers),
		Known:    len(s.Known),
		Unknown:  len(s.Unknown),
		Missed:   slices.Clone(s.Unknown),
	}
	if sum.Answered > 0 {
		sum.Accuracy = float64(sum.Known) / float64(sum.Answered)
	}
	return sum
}
