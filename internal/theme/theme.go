package theme

import (
	"github.com/dshills/ksyntax/internal/syntax"
)

// Theme maps the default text styles of the syntax engine to colors.
type Theme struct {
	// Name is the display name of the theme.
	Name string

	// Background is the editor background color.
	Background Color

	// Foreground is the default text color.
	Foreground Color

	// Selection is the selection background color.
	Selection Color

	// TextStyles maps default text styles to their appearance.
	TextStyles map[syntax.TextStyle]Style
}

// StyleForTextStyle returns the style of ts, or the foreground on the
// default background when the theme does not define it.
func (t *Theme) StyleForTextStyle(ts syntax.TextStyle) Style {
	if style, ok := t.TextStyles[ts]; ok {
		return style
	}
	if style, ok := t.TextStyles[syntax.TextStyleNormal]; ok {
		return style
	}
	return NewStyle(t.Foreground)
}

// StyleFor returns the style of a Format: the theme style of its text style
// with the format's own overrides applied. Unparsable override colors are
// ignored. The invalid Format renders as normal text.
func (t *Theme) StyleFor(f syntax.Format) Style {
	style := t.StyleForTextStyle(f.TextStyle())
	o := f.Overrides()
	if o.IsEmpty() {
		return style
	}

	override := func(dst *Color, value string) {
		if value == "" {
			return
		}
		if c, err := ParseColor(value); err == nil {
			*dst = c
		}
	}
	override(&style.Foreground, o.Color)
	override(&style.SelectedForeground, o.SelectedColor)
	override(&style.Background, o.Background)
	override(&style.SelectedBackground, o.SelectedBackground)

	flag := func(attr Attribute, value *bool) {
		if value != nil {
			style.Attributes = style.Attributes.set(attr, *value)
		}
	}
	flag(AttrBold, o.Bold)
	flag(AttrItalic, o.Italic)
	flag(AttrUnderline, o.Underline)
	flag(AttrStrikethrough, o.StrikeThrough)
	return style
}

// DefaultTheme returns a dark theme.
func DefaultTheme() *Theme {
	fg := ColorFromRGB(212, 212, 212)

	comment := ColorFromRGB(106, 153, 85)
	keyword := ColorFromRGB(86, 156, 214)
	str := ColorFromRGB(206, 145, 120)
	number := ColorFromRGB(181, 206, 168)
	function := ColorFromRGB(220, 220, 170)
	typ := ColorFromRGB(78, 201, 176)
	variable := ColorFromRGB(156, 220, 254)
	control := ColorFromRGB(197, 134, 192)
	preproc := ColorFromRGB(155, 155, 155)
	invalid := ColorFromRGB(244, 71, 71)
	warning := ColorFromRGB(229, 192, 123)

	return &Theme{
		Name:       "Default Dark",
		Background: ColorFromRGB(30, 30, 30),
		Foreground: fg,
		Selection:  ColorFromRGB(64, 64, 128),
		TextStyles: map[syntax.TextStyle]Style{
			syntax.TextStyleNormal:         NewStyle(fg),
			syntax.TextStyleKeyword:        NewStyle(keyword).Bold(),
			syntax.TextStyleFunction:       NewStyle(function),
			syntax.TextStyleVariable:       NewStyle(variable),
			syntax.TextStyleControlFlow:    NewStyle(control).Bold(),
			syntax.TextStyleOperator:       NewStyle(fg),
			syntax.TextStyleBuiltIn:        NewStyle(typ),
			syntax.TextStyleExtension:      NewStyle(typ).Bold(),
			syntax.TextStylePreprocessor:   NewStyle(preproc),
			syntax.TextStyleAttribute:      NewStyle(variable),
			syntax.TextStyleChar:           NewStyle(str),
			syntax.TextStyleSpecialChar:    NewStyle(ColorFromRGB(215, 186, 125)),
			syntax.TextStyleString:         NewStyle(str),
			syntax.TextStyleVerbatimString: NewStyle(str),
			syntax.TextStyleSpecialString:  NewStyle(ColorFromRGB(209, 105, 105)),
			syntax.TextStyleImport:         NewStyle(keyword),
			syntax.TextStyleDataType:       NewStyle(typ),
			syntax.TextStyleDecVal:         NewStyle(number),
			syntax.TextStyleBaseN:          NewStyle(number),
			syntax.TextStyleFloat:          NewStyle(number),
			syntax.TextStyleConstant:       NewStyle(ColorFromRGB(79, 193, 255)),
			syntax.TextStyleComment:        NewStyle(comment).Italic(),
			syntax.TextStyleDocumentation:  NewStyle(comment),
			syntax.TextStyleAnnotation:     NewStyle(function),
			syntax.TextStyleCommentVar:     NewStyle(comment).Bold(),
			syntax.TextStyleRegionMarker:   NewStyle(preproc).WithBackground(ColorFromRGB(40, 40, 40)),
			syntax.TextStyleInformation:    NewStyle(keyword),
			syntax.TextStyleWarning:        NewStyle(warning),
			syntax.TextStyleAlert:          NewStyle(invalid).Bold().WithBackground(ColorFromRGB(80, 20, 40)),
			syntax.TextStyleOthers:         NewStyle(typ),
			syntax.TextStyleError:          NewStyle(invalid).Underline(),
		},
	}
}
