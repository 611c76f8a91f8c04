package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/catalog"
)

// CardWidth is the inner width of a flashcard.
const CardWidth = 36

// Front renders the prompt side of a flashcard: the glyph with its position
// in the session.
func (r Renderer) Front(item catalog.Item, pos, total int) string {
	header := fmt.Sprintf("%d/%d", pos, total)
	body := r.render(glyphStyle, item.Glyph)
	if !r.Styled {
		return fmt.Sprintf("[%s] %s", header, item.Glyph)
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		r.Hint(header),
		cardStyle.Width(CardWidth).Render(body),
	)
}

// Back renders the answer side: romanization, meaning and the first example.
func (r Renderer) Back(item catalog.Item) string {
	var lines []string
	head := item.Romanization
	if item.Pronunciation != "" && item.Pronunciation != item.Romanization {
		head += " /" + item.Pronunciation + "/"
	}
	lines = append(lines, head)
	if item.Meaning != "" {
		lines = append(lines, item.Meaning)
	}
	if item.Mnemonic != "" {
		lines = append(lines, r.Hint(item.Mnemonic))
	}
	if len(item.Examples) > 0 {
		ex := item.Examples[0]
		text := ex.Word
		if ex.Reading != "" {
			text += " (" + ex.Reading + ")"
		}
		if ex.Meaning != "" {
			text += " " + ex.Meaning
		}
		lines = append(lines, r.Hint(text))
	}
	if !r.Styled {
		return "  " + strings.Join(lines, "\n  ")
	}
	return cardStyle.Width(CardWidth).Render(strings.Join(lines, "\n"))
}

// Choice renders a multiple-choice question: the prompt on a card and the
// options numbered from 1.
func (r Renderer) Choice(prompt string, options []string, pos, total int) string {
	header := fmt.Sprintf("%d/%d", pos, total)
	opts := make([]string, len(options))
	for i, o := range options {
		opts[i] = fmt.Sprintf("%d) %s", i+1, o)
	}
	line := strings.Join(opts, "   ")
	if !r.Styled {
		return fmt.Sprintf("[%s] %s\n  %s", header, prompt, line)
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		r.Hint(header),
		cardStyle.Width(CardWidth).Render(r.render(glyphStyle, prompt)),
		line,
	)
}
