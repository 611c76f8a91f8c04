package session

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/abhisek/lingo/internal/catalog"
	"github.com/abhisek/lingo/internal/mastery"
	"github.com/abhisek/lingo/internal/spacedrep"
)

func hiragana(t *testing.T) *catalog.Collection {
	t.Helper()
	reg, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default: %v", err)
	}
	c, err := reg.Get("ja-hiragana")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return c
}

func TestPlanner_FilterAndCount(t *testing.T) {
	c := hiragana(t)
	p := NewPlanner(rand.New(rand.NewPCG(1, 2)), testClock())

	s, err := p.Plan("u1", c, nil, Options{Filter: spacedrep.FilterNew, Count: 10})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(s.Batch) != 10 {
		t.Errorf("batch = %d, want 10", len(s.Batch))
	}
	if s.CollectionID != "ja-hiragana" || s.UserID != "u1" {
		t.Errorf("session = %s/%s", s.UserID, s.CollectionID)
	}
}

func TestPlanner_NothingDue(t *testing.T) {
	c := hiragana(t)
	p := NewPlanner(nil, testClock())
	_, err := p.Plan("u1", c, map[string]*mastery.ProgressRecord{}, Options{Filter: spacedrep.FilterDue, Count: 5})
	if !errors.Is(err, spacedrep.ErrNoItemsAvailable) {
		t.Errorf("err = %v, want ErrNoItemsAvailable", err)
	}
}

func TestPlanner_Lesson(t *testing.T) {
	c := hiragana(t)
	p := NewPlanner(rand.New(rand.NewPCG(3, 4)), testClock())

	l, err := p.PlanLesson("u1", c, "ja-hiragana--1", 4)
	if err != nil {
		t.Fatalf("PlanLesson: %v", err)
	}
	if l.ID != "ja-hiragana--1" || l.CollectionID != "ja-hiragana" {
		t.Errorf("lesson = %s in %s", l.ID, l.CollectionID)
	}
	got := itemIDs(l.Items)
	slices.Sort(got)
	if !slices.Equal(got, []string{"ka", "ke", "ki", "ko", "ku"}) {
		t.Errorf("lesson items = %v", got)
	}
	if len(l.Batches) != 1 {
		t.Errorf("batches = %d, want 1", len(l.Batches))
	}
}

func TestPlanner_UnknownLesson(t *testing.T) {
	c := hiragana(t)
	p := NewPlanner(nil, testClock())
	if _, err := p.PlanLesson("u1", c, "ja-hiragana--99", 4); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
