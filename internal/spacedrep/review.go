package spacedrep

import (
	"time"

	"github.com/abhisek/lingo/internal/mastery"
)

// OverdueGrace is the fraction of an item's interval it may stay due before
// it is reported as overdue.
const OverdueGrace = 0.5

// ReviewStatus describes an item's review timing for display.
type ReviewStatus string

const (
	ReviewNew     ReviewStatus = "new"
	ReviewNotDue  ReviewStatus = "not_due"
	ReviewDue     ReviewStatus = "due"
	ReviewOverdue ReviewStatus = "overdue"
)

// OverdueDays returns how many days past due the item is. Returns 0 if the
// item is not yet due or has never been reviewed.
func OverdueDays(rec *mastery.ProgressRecord, now time.Time) float64 {
	if !rec.IsDue(now) {
		return 0
	}
	return now.Sub(rec.NextReviewAt).Hours() / 24.0
}

// DaysUntilReview returns the number of whole days until the next review,
// rounded up. Returns 0 if already due or never reviewed.
func DaysUntilReview(rec *mastery.ProgressRecord, now time.Time) int {
	if rec == nil || rec.IsDue(now) {
		return 0
	}
	return int(rec.NextReviewAt.Sub(now).Hours()/24.0) + 1
}

// StatusAt classifies an item's review timing. An item is overdue once it
// has been due for longer than OverdueGrace of its interval; items with a
// zero interval are overdue after one day.
func StatusAt(rec *mastery.ProgressRecord, now time.Time) ReviewStatus {
	if rec == nil {
		return ReviewNew
	}
	if !rec.IsDue(now) {
		return ReviewNotDue
	}
	grace := float64(max(rec.IntervalDays, 1)) * OverdueGrace * 24.0
	if now.After(rec.NextReviewAt.Add(time.Duration(grace * float64(time.Hour)))) {
		return ReviewOverdue
	}
	return ReviewDue
}
