package theme

import "github.com/gdamore/tcell/v2"

// Attribute is a set of text attributes.
type Attribute uint8

// Text attributes.
const (
	AttrNone Attribute = 0
	AttrBold Attribute = 1 << (iota - 1)
	AttrItalic
	AttrUnderline
	AttrStrikethrough
)

// Has reports whether a contains attr.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// set turns attr on or off.
func (a Attribute) set(attr Attribute, on bool) Attribute {
	if on {
		return a | attr
	}
	return a &^ attr
}

// Style is the visual appearance of a text style.
type Style struct {
	Foreground         Color
	Background         Color
	SelectedForeground Color
	SelectedBackground Color
	Attributes         Attribute
}

// DefaultStyle inherits every color and has no attributes.
func DefaultStyle() Style {
	return Style{
		Foreground:         ColorDefault,
		Background:         ColorDefault,
		SelectedForeground: ColorDefault,
		SelectedBackground: ColorDefault,
	}
}

// NewStyle returns the default style with foreground fg.
func NewStyle(fg Color) Style {
	s := DefaultStyle()
	s.Foreground = fg
	return s
}

// WithBackground returns s with background bg.
func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

// Bold returns s with bold set.
func (s Style) Bold() Style {
	s.Attributes |= AttrBold
	return s
}

// Italic returns s with italic set.
func (s Style) Italic() Style {
	s.Attributes |= AttrItalic
	return s
}

// Underline returns s with underline set.
func (s Style) Underline() Style {
	s.Attributes |= AttrUnderline
	return s
}

// Strikethrough returns s with strikethrough set.
func (s Style) Strikethrough() Style {
	s.Attributes |= AttrStrikethrough
	return s
}

// TCell converts s to a terminal style. When selected is true the selected
// colors are used where set.
func (s Style) TCell(selected bool) tcell.Style {
	fg, bg := s.Foreground, s.Background
	if selected {
		if !s.SelectedForeground.IsDefault() {
			fg = s.SelectedForeground
		}
		if !s.SelectedBackground.IsDefault() {
			bg = s.SelectedBackground
		}
	}

	return tcell.StyleDefault.
		Foreground(fg.tcell()).
		Background(bg.tcell()).
		Bold(s.Attributes.Has(AttrBold)).
		Italic(s.Attributes.Has(AttrItalic)).
		Underline(s.Attributes.Has(AttrUnderline)).
		StrikeThrough(s.Attributes.Has(AttrStrikethrough))
}
