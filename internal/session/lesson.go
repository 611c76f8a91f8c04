package session

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/abhisek/lingo/internal/catalog"
	"github.com/abhisek/lingo/internal/spacedrep"
)

// LessonBatchSize is the number of items flashed and quizzed together
// before moving on.
const LessonBatchSize = 5

// Lesson walks one lesson set in batches. Each batch gets a flash pass and a
// glyph-to-romanization quiz; a romanization-to-glyph quiz over every item
// closes the lesson. Only the final quiz counts toward progress.
type Lesson struct {
	ID           string
	UserID       string
	CollectionID string

	// Items is the lesson in play order; Batches chunks it.
	Items      []catalog.Item
	Batches    [][]catalog.Item
	BatchIndex int

	pool []catalog.Item
	rng  *rand.Rand
	now  func() time.Time
}

// PlanLesson starts a lesson over every item of the given lesson set,
// shuffled. Progress filters and counts do not apply.
func (p *Planner) PlanLesson(userID string, c *catalog.Collection, lessonID string, minSize int) (*Lesson, error) {
	set, err := catalog.Lesson(c, minSize, lessonID)
	if err != nil {
		return nil, err
	}
	if len(set.Items) == 0 {
		return nil, spacedrep.ErrNoItemsAvailable
	}

	items := slices.Clone(set.Items)
	spacedrep.Shuffle(items, p.rng)

	return &Lesson{
		ID:           set.ID,
		UserID:       userID,
		CollectionID: c.ID,
		Items:        items,
		Batches:      Chunk(items, LessonBatchSize),
		pool:         c.Items,
		rng:          p.rng,
		now:          p.now,
	}, nil
}

// Chunk splits items into consecutive slices of at most size items.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}
	var out [][]T
	for chunk := range slices.Chunk(items, max(size, 1)) {
		out = append(out, chunk)
	}
	return out
}

// Batch returns the current batch.
func (l *Lesson) Batch() []catalog.Item {
	if l.BatchIndex >= len(l.Batches) {
		return nil
	}
	return l.Batches[l.BatchIndex]
}

// Flash starts a swipe pass over the current batch. Its answers are for the
// learner only and are not persisted.
func (l *Lesson) Flash() *Session {
	s := New(l.UserID, l.CollectionID, slices.Clone(l.Batch()), l.now)
	s.LessonID = l.ID
	return s
}

// BatchQuiz asks for the romanization of every item in the current batch,
// with distractors drawn from the lesson.
func (l *Lesson) BatchQuiz() *Quiz {
	return NewQuiz(l.rng, l.Batch(), l.Items, GlyphToRomanization)
}

// NextBatch advances to the following batch and reports whether one exists.
func (l *Lesson) NextBatch() bool {
	if l.BatchIndex < len(l.Batches) {
		l.BatchIndex++
	}
	return l.BatchIndex < len(l.Batches)
}

// FinalQuiz asks for the glyph of every lesson item, with distractors drawn
// from the whole collection.
func (l *Lesson) FinalQuiz() *Quiz {
	return NewQuiz(l.rng, l.Items, l.pool, RomanizationToGlyph)
}

// Results converts a finished final quiz into a session of swipes: known
// for correct answers, unknown otherwise. Its outcomes are what gets saved.
func (l *Lesson) Results(final *Quiz) (*Session, error) {
	if !final.Finished() {
		return nil, ErrNotFinished
	}
	known := make(map[string]bool, len(final.Correct))
	for _, it := range final.Correct {
		known[it.ID] = true
	}

	s := New(l.UserID, l.CollectionID, slices.Clone(l.Items), l.now)
	s.LessonID = l.ID
	for _, it := range l.Items {
		if err := s.Swipe(known[it.ID]); err != nil {
			return nil, err
		}
	}
	return s, nil
}
