package spacedrep

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/abhisek/lingo/internal/catalog"
	"github.com/abhisek/lingo/internal/mastery"
)

// ErrNoItemsAvailable is returned when a filter leaves nothing to practice.
// It is an expected outcome and should be reported, not treated as a crash.
var ErrNoItemsAvailable = errors.New("spacedrep: no items available")

// SelectBatch filters items against their progress, shuffles the survivors
// and truncates to count. count <= 0 means no limit. rng may be nil, in which
// case the package-level source is used.
func SelectBatch(
	items []catalog.Item,
	progress map[string]*mastery.ProgressRecord,
	f Filter,
	count int,
	now time.Time,
	rng *rand.Rand,
) ([]catalog.Item, error) {
	var pool []catalog.Item
	for _, it := range items {
		if f.Matches(progress[it.ID], now) {
			pool = append(pool, it)
		}
	}
	if len(pool) == 0 {
		return nil, ErrNoItemsAvailable
	}

	Shuffle(pool, rng)
	if count > 0 && count < len(pool) {
		pool = pool[:count]
	}
	return pool, nil
}

// Shuffle permutes items in place with a Fisher-Yates shuffle.
func Shuffle[T any](items []T, rng *rand.Rand) {
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for i := len(items) - 1; i > 0; i-- {
		j := intN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
