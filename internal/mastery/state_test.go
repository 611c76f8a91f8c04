package mastery

import (
	"testing"
	"time"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		strength int
		want     Status
	}{
		{0, StatusLearning},
		{1, StatusLearning},
		{2, StatusReviewing},
		{3, StatusReviewing},
		{4, StatusMastered},
		{5, StatusMastered},
	}
	for _, tt := range tests {
		rec := &ProgressRecord{Strength: tt.strength, EaseFactor: InitialEaseFactor}
		if got := StatusOf(rec); got != tt.want {
			t.Errorf("strength %d: got %s, want %s", tt.strength, got, tt.want)
		}
	}
	if got := StatusOf(nil); got != StatusNew {
		t.Errorf("nil record: got %s, want new", got)
	}
}

func TestTransition(t *testing.T) {
	rec, _ := ApplyReview("a", nil, QualityPerfect, t0)
	tr := Transition(nil, rec)
	if tr == nil {
		t.Fatal("expected transition from new")
	}
	if tr.From != StatusNew || tr.To != StatusLearning || tr.ItemID != "a" {
		t.Errorf("got %+v", *tr)
	}

	again, _ := ApplyReview("a", rec, QualityPerfect, t0.Add(24*time.Hour))
	if tr := Transition(rec, again); tr == nil || tr.To != StatusReviewing {
		t.Errorf("expected learning -> reviewing, got %+v", tr)
	}

	same, _ := ApplyReview("a", again, QualityPerfect, t0.Add(48*time.Hour))
	if tr := Transition(again, same); tr != nil {
		t.Errorf("expected no transition, got %+v", *tr)
	}
}

func TestRecord_IsDue(t *testing.T) {
	rec := &ProgressRecord{NextReviewAt: t0}
	if !rec.IsDue(t0) {
		t.Error("expected due at NextReviewAt")
	}
	if rec.IsDue(t0.Add(-time.Second)) {
		t.Error("expected not due before NextReviewAt")
	}
	var none *ProgressRecord
	if none.IsDue(t0) {
		t.Error("nil record should not be due")
	}
}

func TestRecord_IsWeak(t *testing.T) {
	if (*ProgressRecord)(nil).IsWeak() {
		t.Error("nil record should not be weak")
	}
	if !(&ProgressRecord{Strength: 2}).IsWeak() {
		t.Error("strength 2 should be weak")
	}
	if (&ProgressRecord{Strength: 3}).IsWeak() {
		t.Error("strength 3 should not be weak")
	}
}
