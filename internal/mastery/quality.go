package mastery

import (
	"encoding"
	"fmt"
	"strconv"
	"strings"
)

// Quality is a 0-5 grade describing how well a review went.
type Quality int

const (
	// QualityBlackout is a complete failure to recall.
	QualityBlackout Quality = 0
	// QualityIncorrect is wrong, but remembered once the answer was shown.
	QualityIncorrect Quality = 1
	// QualityIncorrectFamiliar is wrong, but the answer felt familiar.
	QualityIncorrectFamiliar Quality = 2
	// QualityCorrectDifficult is right after significant effort.
	QualityCorrectDifficult Quality = 3
	// QualityCorrectHesitation is right after some hesitation.
	QualityCorrectHesitation Quality = 4
	// QualityPerfect is right with no hesitation.
	QualityPerfect Quality = 5
)

// Binary (swipe) outcomes map to fixed grades.
const (
	QualityKnown   = QualityCorrectHesitation
	QualityUnknown = QualityIncorrect
)

// PassThreshold is the lowest grade counted as a correct review.
const PassThreshold = QualityCorrectDifficult

var qualityNames = [...]string{
	QualityBlackout:          "blackout",
	QualityIncorrect:         "incorrect",
	QualityIncorrectFamiliar: "incorrect-familiar",
	QualityCorrectDifficult:  "correct-difficult",
	QualityCorrectHesitation: "correct-hesitation",
	QualityPerfect:           "perfect",
}

var (
	_ fmt.Stringer             = Quality(0)
	_ encoding.TextMarshaler   = Quality(0)
	_ encoding.TextUnmarshaler = (*Quality)(nil)
)

// String returns the grade name, or "Quality(n)" for invalid values.
func (q Quality) String() string {
	if q.Validate() == nil {
		return qualityNames[q]
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// MarshalText implements encoding.TextMarshaler.
func (q Quality) MarshalText() ([]byte, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return []byte(qualityNames[q]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts grade names
// as well as everything ParseQuality accepts.
func (q *Quality) UnmarshalText(text []byte) error {
	for i, name := range qualityNames {
		if string(text) == name {
			*q = Quality(i)
			return nil
		}
	}
	v, err := ParseQuality(string(text))
	if err != nil {
		return err
	}
	*q = v
	return nil
}

// Validate returns ErrInvalidQuality if q is outside [0,5].
func (q Quality) Validate() error {
	if q < QualityBlackout || q > QualityPerfect {
		return fmt.Errorf("%w: %d", ErrInvalidQuality, int(q))
	}
	return nil
}

// IsCorrect reports whether q counts as a correct review.
func (q Quality) IsCorrect() bool {
	return q >= PassThreshold
}

// QualityForSwipe maps a binary known/unknown answer to its grade.
func QualityForSwipe(known bool) Quality {
	if known {
		return QualityKnown
	}
	return QualityUnknown
}

// ParseQuality parses a grade from user input. It accepts the digits 0-5,
// "known"/"unknown", "right"/"left" swipe directions and "y"/"n".
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "known", "right", "y", "yes":
		return QualityKnown, nil
	case "unknown", "left", "n", "no":
		return QualityUnknown, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuality, s)
	}
	q := Quality(n)
	if err := q.Validate(); err != nil {
		return 0, err
	}
	return q, nil
}
