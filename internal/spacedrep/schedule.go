package spacedrep

import (
	"sort"
	"time"

	"github.com/abhisek/lingo/internal/mastery"
)

// DueItem is a reviewed item whose next review time has passed.
type DueItem struct {
	ItemID      string
	OverdueDays float64
	Status      ReviewStatus
	Record      *mastery.ProgressRecord
}

// DueItems returns every due item in progress, most overdue first. Ties are
// broken by item ID.
func DueItems(progress map[string]*mastery.ProgressRecord, now time.Time) []DueItem {
	var due []DueItem
	for id, rec := range progress {
		if !rec.IsDue(now) {
			continue
		}
		due = append(due, DueItem{
			ItemID:      id,
			OverdueDays: OverdueDays(rec, now),
			Status:      StatusAt(rec, now),
			Record:      rec,
		})
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].OverdueDays != due[j].OverdueDays {
			return due[i].OverdueDays > due[j].OverdueDays
		}
		return due[i].ItemID < due[j].ItemID
	})
	return due
}

// NextDue returns the earliest upcoming review time among records that are
// not yet due, or the zero time if there is none.
func NextDue(progress map[string]*mastery.ProgressRecord, now time.Time) time.Time {
	var next time.Time
	for _, rec := range progress {
		if rec == nil || rec.IsDue(now) {
			continue
		}
		if next.IsZero() || rec.NextReviewAt.Before(next) {
			next = rec.NextReviewAt
		}
	}
	return next
}
