package spacedrep

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/lingo/internal/mastery"
)

// Filter selects which items of a collection are eligible for a batch.
type Filter string

const (
	// FilterAll admits every item.
	FilterAll Filter = "all"
	// FilterNew admits items that have never been reviewed.
	FilterNew Filter = "new"
	// FilterDue admits reviewed items whose next review time has passed.
	FilterDue Filter = "due"
	// FilterWeak admits reviewed items still at low strength.
	FilterWeak Filter = "weak"
)

// Filters lists every supported filter in display order.
var Filters = []Filter{FilterAll, FilterNew, FilterDue, FilterWeak}

// ParseFilter parses a filter name. The empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FilterAll, nil
	}
	for _, known := range Filters {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q (want one of all, new, due, weak)", s)
}

// Matches reports whether an item with the given record passes the filter.
// rec is nil for an item that has never been reviewed.
func (f Filter) Matches(rec *mastery.ProgressRecord, now time.Time) bool {
	switch f {
	case FilterNew:
		return mastery.StatusOf(rec) == mastery.StatusNew
	case FilterDue:
		return rec.IsDue(now)
	case FilterWeak:
		return rec.IsWeak()
	default:
		return true
	}
}
