package session

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/abhisek/lingo/internal/catalog"
	"github.com/abhisek/lingo/internal/spacedrep"
)

// QuizChoices is the number of options offered per question when the pool
// has enough distinct answers.
const QuizChoices = 4

// ErrInvalidChoice is returned for an option index outside the question.
var ErrInvalidChoice = errors.New("session: invalid choice")

// QuizKind selects which side of an item is shown and which is asked for.
type QuizKind int

const (
	// GlyphToRomanization shows the glyph and asks for its romanization.
	GlyphToRomanization QuizKind = iota
	// RomanizationToGlyph shows the romanization and asks for the glyph.
	RomanizationToGlyph
)

func (k QuizKind) String() string {
	switch k {
	case GlyphToRomanization:
		return "glyph-to-romanization"
	case RomanizationToGlyph:
		return "romanization-to-glyph"
	default:
		return fmt.Sprintf("QuizKind(%d)", int(k))
	}
}

func (k QuizKind) prompt(it catalog.Item) string {
	if k == RomanizationToGlyph {
		return romanization(it)
	}
	return it.Glyph
}

func (k QuizKind) answer(it catalog.Item) string {
	if k == RomanizationToGlyph {
		return it.Glyph
	}
	return romanization(it)
}

func romanization(it catalog.Item) string {
	if it.Romanization != "" {
		return it.Romanization
	}
	return it.Meaning
}

// Question is one multiple-choice prompt.
type Question struct {
	Item    catalog.Item
	Kind    QuizKind
	Prompt  string
	Answer  string
	Options []string
}

// Correct reports whether the 0-based choice picks the answer.
func (q Question) Correct(choice int) bool {
	return choice >= 0 && choice < len(q.Options) && q.Options[choice] == q.Answer
}

// Quiz is a multiple-choice pass over a set of items.
type Quiz struct {
	Kind         QuizKind
	Questions    []Question
	CurrentIndex int
	Correct      []catalog.Item
	Incorrect    []catalog.Item
}

// NewQuiz builds one question per target in shuffled order. Distractors come
// from the other targets first and then from the rest of pool, skipping
// values equal to the answer or to another option.
func NewQuiz(rng *rand.Rand, targets, pool []catalog.Item, kind QuizKind) *Quiz {
	order := slices.Clone(targets)
	spacedrep.Shuffle(order, rng)

	inTargets := make(map[string]bool, len(targets))
	for _, it := range targets {
		inTargets[it.ID] = true
	}

	quiz := &Quiz{Kind: kind, Questions: make([]Question, 0, len(order))}
	for _, it := range order {
		var same, rest []catalog.Item
		for _, o := range targets {
			if o.ID != it.ID {
				same = append(same, o)
			}
		}
		for _, o := range pool {
			if o.ID != it.ID && !inTargets[o.ID] {
				rest = append(rest, o)
			}
		}
		spacedrep.Shuffle(same, rng)
		spacedrep.Shuffle(rest, rng)

		answer := kind.answer(it)
		used := map[string]bool{answer: true}
		options := []string{answer}
		for _, o := range append(same, rest...) {
			if len(options) == QuizChoices {
				break
			}
			v := kind.answer(o)
			if v == "" || used[v] {
				continue
			}
			used[v] = true
			options = append(options, v)
		}
		spacedrep.Shuffle(options, rng)

		quiz.Questions = append(quiz.Questions, Question{
			Item:    it,
			Kind:    kind,
			Prompt:  kind.prompt(it),
			Answer:  answer,
			Options: options,
		})
	}
	return quiz
}

// Current returns the question awaiting an answer.
func (q *Quiz) Current() (Question, bool) {
	if q.Finished() {
		return Question{}, false
	}
	return q.Questions[q.CurrentIndex], true
}

// Finished reports whether every question has been answered.
func (q *Quiz) Finished() bool {
	return q.CurrentIndex >= len(q.Questions)
}

// Choose answers the current question with a 0-based option index and
// advances. It reports whether the choice was correct.
func (q *Quiz) Choose(choice int) (bool, error) {
	cur, ok := q.Current()
	if !ok {
		return false, ErrFinished
	}
	if choice < 0 || choice >= len(cur.Options) {
		return false, fmt.Errorf("%w: %d of %d", ErrInvalidChoice, choice+1, len(cur.Options))
	}
	correct := cur.Correct(choice)
	if correct {
		q.Correct = append(q.Correct, cur.Item)
	} else {
		q.Incorrect = append(q.Incorrect, cur.Item)
	}
	q.CurrentIndex++
	return correct, nil
}

// Score returns the number of correct answers and of questions.
func (q *Quiz) Score() (int, int) {
	return len(q.Correct), len(q.Questions)
}
