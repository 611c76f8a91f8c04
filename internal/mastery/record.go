package mastery

import "time"

// Scheduler defaults.
const (
	InitialEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MaxStrength       = 5

	// FailureEasePenalty is subtracted from the ease factor on an incorrect review.
	FailureEasePenalty = 0.2
)

// ProgressRecord holds the learning state of one item for one learner
// within one collection.
type ProgressRecord struct {
	ItemID         string    `json:"item_id"`
	Strength       int       `json:"strength"`
	EaseFactor     float64   `json:"ease_factor"`
	IntervalDays   int       `json:"interval_days"`
	ReviewCount    int       `json:"review_count"`
	CorrectCount   int       `json:"correct_count"`
	IncorrectCount int       `json:"incorrect_count"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	NextReviewAt   time.Time `json:"next_review_at"`
}

// Status returns the derived status of the record.
func (r *ProgressRecord) Status() Status {
	return StatusOf(r)
}

// IsDue reports whether the item is due for review (at or past NextReviewAt).
func (r *ProgressRecord) IsDue(now time.Time) bool {
	if r == nil {
		return false
	}
	return !now.Before(r.NextReviewAt)
}

// IsWeak reports whether a reviewed item is still at low strength.
func (r *ProgressRecord) IsWeak() bool {
	if r == nil {
		return false
	}
	return r.Strength <= ReviewingStrength && r.Status() != StatusNew
}

// Accuracy returns CorrectCount / ReviewCount, or 0 for an unreviewed record.
func (r *ProgressRecord) Accuracy() float64 {
	if r == nil || r.ReviewCount == 0 {
		return 0
	}
	return float64(r.CorrectCount) / float64(r.ReviewCount)
}

// freshRecord is the implicit state of an item that has no record yet.
func freshRecord(itemID string) ProgressRecord {
	return ProgressRecord{
		ItemID:     itemID,
		EaseFactor: InitialEaseFactor,
	}
}
