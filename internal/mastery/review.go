package mastery

import (
	"math"
	"time"
)

// ApplyReview computes the next progress record for an item after one review.
// existing may be nil for an item that has never been reviewed. existing is
// not modified. The update is SM-2 derived:
//
//   - correct (q >= 3): strength+1 (max 5); interval 0->1, 1->6, else
//     round(interval * ease); ease += 0.1 - (5-q)*(0.08 + (5-q)*0.02)
//   - incorrect: strength-1 (min 0); interval 0; ease -= 0.2
//
// Ease never drops below MinEaseFactor.
func ApplyReview(itemID string, existing *ProgressRecord, q Quality, now time.Time) (*ProgressRecord, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	next := freshRecord(itemID)
	if existing != nil {
		next = *existing
		if next.ItemID == "" {
			next.ItemID = itemID
		}
	}

	if q.IsCorrect() {
		next.Strength = min(MaxStrength, next.Strength+1)
		next.IntervalDays = nextInterval(next.IntervalDays, next.EaseFactor)
		next.EaseFactor = math.Max(MinEaseFactor, next.EaseFactor+easeDelta(q))
		next.CorrectCount++
	} else {
		next.Strength = max(0, next.Strength-1)
		next.IntervalDays = 0
		next.EaseFactor = math.Max(MinEaseFactor, next.EaseFactor-FailureEasePenalty)
		next.IncorrectCount++
	}

	next.ReviewCount++
	next.LastReviewedAt = now
	next.NextReviewAt = now.AddDate(0, 0, next.IntervalDays)
	return &next, nil
}

// nextInterval grows the interval after a correct review using the ease
// factor in effect before the review.
func nextInterval(prev int, ease float64) int {
	switch prev {
	case 0:
		return 1
	case 1:
		return 6
	default:
		return int(math.Round(float64(prev) * ease))
	}
}

// easeDelta is the SM-2 ease adjustment for a correct grade.
// q=5 gives +0.1, q=4 gives 0, q=3 gives -0.14.
func easeDelta(q Quality) float64 {
	d := float64(QualityPerfect - q)
	return 0.1 - d*(0.08+d*0.02)
}
