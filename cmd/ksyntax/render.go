package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/ksyntax/internal/highlight"
	"github.com/dshills/ksyntax/internal/theme"
)

// writeLine writes line with the styles of spans rendered for the color
// profile of r.
func writeLine(w io.Writer, r *lipgloss.Renderer, line string, spans []highlight.StyledSpan) error {
	runes := []rune(line)
	var b strings.Builder

	pos := 0
	for _, s := range spans {
		if s.Offset >= len(runes) {
			break
		}
		if s.Offset > pos {
			b.WriteString(string(runes[pos:s.Offset]))
		}
		end := min(s.Offset+s.Length, len(runes))
		b.WriteString(spanStyle(r, s.Style).Render(string(runes[s.Offset:end])))
		pos = end
	}
	if pos < len(runes) {
		b.WriteString(string(runes[pos:]))
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

func spanStyle(r *lipgloss.Renderer, s theme.Style) lipgloss.Style {
	ls := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	if s.Attributes.Has(theme.AttrBold) {
		ls = ls.Bold(true)
	}
	if s.Attributes.Has(theme.AttrItalic) {
		ls = ls.Italic(true)
	}
	if s.Attributes.Has(theme.AttrUnderline) {
		ls = ls.Underline(true)
	}
	if s.Attributes.Has(theme.AttrStrikethrough) {
		ls = ls.Strikethrough(true)
	}
	if c := s.Foreground; !c.IsDefault() {
		ls = ls.Foreground(lipgloss.Color(c.String()))
	}
	if c := s.Background; !c.IsDefault() {
		ls = ls.Background(lipgloss.Color(c.String()))
	}
	return ls
}

// dumpLine prints the raw events of a line, one per row.
func dumpLine(w io.Writer, n int, spans []highlight.Span, folds []highlight.Fold) error {
	for _, s := range spans {
		if _, err := fmt.Fprintf(w, "%d:%d+%d\t%s\n", n+1, s.Offset, s.Length, s.Format); err != nil {
			return err
		}
	}
	for _, f := range folds {
		if _, err := fmt.Fprintf(w, "%d:%d+%d\t%s\n", n+1, f.Offset, f.Length, f.Region); err != nil {
			return err
		}
	}
	return nil
}
