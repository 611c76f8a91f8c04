package session

import (
	"math/rand/v2"
	"time"

	"github.com/abhisek/lingo/internal/catalog"
	"github.com/abhisek/lingo/internal/mastery"
	"github.com/abhisek/lingo/internal/spacedrep"
)

// DefaultCount is the default number of items in a session.
const DefaultCount = 20

// Options controls how a session's batch is chosen.
type Options struct {
	Filter spacedrep.Filter

	// Count caps the batch size. Zero or less means no cap.
	Count int
}

// Planner builds sessions from a collection and a progress snapshot.
type Planner struct {
	rng *rand.Rand
	now func() time.Time
}

// NewPlanner creates a planner. rng may be nil to use the package-level
// source; now defaults to time.Now.
func NewPlanner(rng *rand.Rand, now func() time.Time) *Planner {
	if now == nil {
		now = time.Now
	}
	return &Planner{rng: rng, now: now}
}

// Plan selects a batch and starts a session. It returns
// spacedrep.ErrNoItemsAvailable when nothing matches.
func (p *Planner) Plan(
	userID string,
	c *catalog.Collection,
	progress map[string]*mastery.ProgressRecord,
	opts Options,
) (*Session, error) {
	batch, err := spacedrep.SelectBatch(c.Items, progress, opts.Filter, opts.Count, p.now(), p.rng)
	if err != nil {
		return nil, err
	}
	return New(userID, c.ID, batch, p.now), nil
}
