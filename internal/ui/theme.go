// Package ui renders flashcards, mastery bars and status labels for the
// terminal.
package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/mastery"
)

// Palette
var (
	Primary   = lipgloss.Color("#8B5CF6")
	Secondary = lipgloss.Color("#14B8A6")
	Accent    = lipgloss.Color("#F97316")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	Border    = lipgloss.Color("#334155")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	hintStyle  = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
	glyphStyle = lipgloss.NewStyle().Bold(true).Foreground(Text)
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Align(lipgloss.Center).
			Padding(1, 2)

	correctStyle   = lipgloss.NewStyle().Foreground(Success).Bold(true)
	incorrectStyle = lipgloss.NewStyle().Foreground(Error).Bold(true)
)

// statusColors maps each mastery status to its label colour.
var statusColors = map[mastery.Status]color.Color{
	mastery.StatusNew:       TextDim,
	mastery.StatusLearning:  Accent,
	mastery.StatusReviewing: Secondary,
	mastery.StatusMastered:  Success,
}

// Renderer produces styled strings, or plain text when Styled is false
// (pipes, tests, dumb terminals).
type Renderer struct {
	Styled bool
}

func (r Renderer) render(s lipgloss.Style, text string) string {
	if !r.Styled {
		return text
	}
	return s.Render(text)
}

// Title renders a heading.
func (r Renderer) Title(text string) string {
	return r.render(titleStyle, text)
}

// Hint renders secondary text.
func (r Renderer) Hint(text string) string {
	return r.render(hintStyle, text)
}

// Result renders feedback for an answer.
func (r Renderer) Result(text string, correct bool) string {
	if correct {
		return r.render(correctStyle, text)
	}
	return r.render(incorrectStyle, text)
}

// Status renders a mastery status label in its colour.
func (r Renderer) Status(s mastery.Status) string {
	c, ok := statusColors[s]
	if !ok || !r.Styled {
		return string(s)
	}
	return lipgloss.NewStyle().Foreground(c).Render(string(s))
}
