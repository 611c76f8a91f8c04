package ui

import (
	"strings"
	"testing"

	"github.com/abhisek/lingo/internal/catalog"
	"github.com/abhisek/lingo/internal/mastery"
)

var ka = catalog.Item{
	ID:           "ka",
	Glyph:        "か",
	Romanization: "ka",
	Meaning:      "syllable ka",
	Examples:     []catalog.Example{{Word: "かさ", Reading: "kasa", Meaning: "umbrella"}},
}

func TestPlainFront(t *testing.T) {
	r := Renderer{}
	got := r.Front(ka, 2, 10)
	if got != "[2/10] か" {
		t.Errorf("Front() = %q", got)
	}
}

func TestPlainBack(t *testing.T) {
	got := Renderer{}.Back(ka)
	for _, want := range []string{"ka", "syllable ka", "かさ (kasa) umbrella"} {
		if !strings.Contains(got, want) {
			t.Errorf("Back() = %q, missing %q", got, want)
		}
	}
}

func TestPlainChoice(t *testing.T) {
	got := Renderer{}.Choice("か", []string{"ki", "ka", "ku"}, 1, 5)
	want := "[1/5] か\n  1) ki   2) ka   3) ku"
	if got != want {
		t.Errorf("Choice() = %q, want %q", got, want)
	}
}

func TestStyledCardKeepsGlyph(t *testing.T) {
	r := Renderer{Styled: true}
	if got := r.Front(ka, 1, 1); !strings.Contains(got, "か") {
		t.Errorf("styled Front() lost glyph: %q", got)
	}
}

func TestPlainProgressBar(t *testing.T) {
	got := Renderer{}.View(ProgressBar{Label: "ja", Percent: 0.5, Width: 10})
	if got != "ja  [#####.....]  50%" {
		t.Errorf("View() = %q", got)
	}
}

func TestProgressBarClamps(t *testing.T) {
	r := Renderer{}
	if got := r.View(ProgressBar{Percent: 1.7, Width: 4}); got != "[####] 100%" {
		t.Errorf("View() over = %q", got)
	}
	if got := r.View(ProgressBar{Percent: -1, Width: 2}); got != "[....]   0%" {
		t.Errorf("View() under = %q", got)
	}
}

func TestStatusPlain(t *testing.T) {
	if got := (Renderer{}).Status(mastery.StatusMastered); got != "mastered" {
		t.Errorf("Status() = %q", got)
	}
}
