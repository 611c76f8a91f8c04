package mastery

import (
	"math"
	"time"
)

// Summary counts the items of a collection (or lesson) by derived status.
type Summary struct {
	Total          int
	New            int
	Learning       int
	Reviewing      int
	Mastered       int
	Due            int
	MasteryPercent int
}

// Summarize builds a Summary for itemIDs from a progress snapshot. Records for
// items outside itemIDs are ignored.
func Summarize(itemIDs []string, progress map[string]*ProgressRecord, now time.Time) Summary {
	s := Summary{Total: len(itemIDs)}
	for _, id := range itemIDs {
		rec := progress[id]
		switch StatusOf(rec) {
		case StatusNew:
			s.New++
		case StatusLearning:
			s.Learning++
		case StatusReviewing:
			s.Reviewing++
		case StatusMastered:
			s.Mastered++
		}
		if rec.IsDue(now) {
			s.Due++
		}
	}
	s.MasteryPercent = percent(s.Mastered, s.Total)
	return s
}

// MasteryPercent returns the rounded share of itemIDs that are mastered.
func MasteryPercent(itemIDs []string, progress map[string]*ProgressRecord) int {
	mastered := 0
	for _, id := range itemIDs {
		if StatusOf(progress[id]) == StatusMastered {
			mastered++
		}
	}
	return percent(mastered, len(itemIDs))
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}
