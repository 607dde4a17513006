package theme

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/dshills/ksyntax/internal/syntax"
)

// ErrUnknownTheme is returned for a theme name chroma does not know.
var ErrUnknownTheme = errors.New("unknown theme")

// chromaTokens lists, per text style, the chroma token types to take the
// appearance from, most specific first.
var chromaTokens = map[syntax.TextStyle][]chroma.TokenType{
	syntax.TextStyleNormal:         {chroma.Text},
	syntax.TextStyleKeyword:        {chroma.Keyword},
	syntax.TextStyleFunction:       {chroma.NameFunction, chroma.Name},
	syntax.TextStyleVariable:       {chroma.NameVariable, chroma.Name},
	syntax.TextStyleControlFlow:    {chroma.KeywordReserved, chroma.Keyword},
	syntax.TextStyleOperator:       {chroma.Operator},
	syntax.TextStyleBuiltIn:        {chroma.NameBuiltin},
	syntax.TextStyleExtension:      {chroma.NameClass, chroma.NameBuiltin},
	syntax.TextStylePreprocessor:   {chroma.CommentPreproc},
	syntax.TextStyleAttribute:      {chroma.NameAttribute},
	syntax.TextStyleChar:           {chroma.LiteralStringChar, chroma.LiteralString},
	syntax.TextStyleSpecialChar:    {chroma.LiteralStringEscape},
	syntax.TextStyleString:         {chroma.LiteralString},
	syntax.TextStyleVerbatimString: {chroma.LiteralStringBacktick, chroma.LiteralString},
	syntax.TextStyleSpecialString:  {chroma.LiteralStringRegex, chroma.LiteralString},
	syntax.TextStyleImport:         {chroma.KeywordNamespace, chroma.Keyword},
	syntax.TextStyleDataType:       {chroma.KeywordType, chroma.NameClass},
	syntax.TextStyleDecVal:         {chroma.LiteralNumberInteger, chroma.LiteralNumber},
	syntax.TextStyleBaseN:          {chroma.LiteralNumberHex, chroma.LiteralNumber},
	syntax.TextStyleFloat:          {chroma.LiteralNumberFloat, chroma.LiteralNumber},
	syntax.TextStyleConstant:       {chroma.NameConstant, chroma.KeywordConstant},
	syntax.TextStyleComment:        {chroma.Comment},
	syntax.TextStyleDocumentation:  {chroma.LiteralStringDoc, chroma.Comment},
	syntax.TextStyleAnnotation:     {chroma.NameDecorator},
	syntax.TextStyleCommentVar:     {chroma.CommentSpecial, chroma.Comment},
	syntax.TextStyleRegionMarker:   {chroma.CommentPreprocFile, chroma.CommentPreproc},
	syntax.TextStyleInformation:    {chroma.GenericOutput, chroma.Comment},
	syntax.TextStyleWarning:        {chroma.GenericEmph, chroma.Keyword},
	syntax.TextStyleAlert:          {chroma.GenericStrong, chroma.Error},
	syntax.TextStyleOthers:         {chroma.Other, chroma.Text},
	syntax.TextStyleError:          {chroma.Error, chroma.GenericError},
}

// ChromaNames returns the names of the chroma built-in styles, sorted.
func ChromaNames() []string {
	names := styles.Names()
	slices.Sort(names)
	return names
}

// FromChroma builds a Theme from a chroma built-in style.
func FromChroma(name string) (*Theme, error) {
	lookup := strings.ToLower(strings.TrimSpace(name))
	if !slices.Contains(styles.Names(), lookup) {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownTheme)
	}
	style := styles.Get(lookup)

	bg := style.Get(chroma.Background)
	t := &Theme{
		Name:       lookup,
		Background: chromaColor(bg.Background),
		Foreground: chromaColor(bg.Colour),
		Selection:  ColorDefault,
		TextStyles: make(map[syntax.TextStyle]Style, len(chromaTokens)),
	}
	if hl := style.Get(chroma.LineHighlight); hl.Background.IsSet() {
		t.Selection = chromaColor(hl.Background)
	}
	if t.Selection.IsDefault() && !t.Background.IsDefault() {
		if t.Background.IsDark() {
			t.Selection = t.Background.Blend(ColorFromRGB(255, 255, 255), 0.15)
		} else {
			t.Selection = t.Background.Blend(ColorFromRGB(0, 0, 0), 0.15)
		}
	}

	for ts, types := range chromaTokens {
		t.TextStyles[ts] = styleFromChroma(style, t.Foreground, t.Background, types)
	}
	return t, nil
}

func styleFromChroma(style *chroma.Style, fg, bg Color, types []chroma.TokenType) Style {
	out := NewStyle(fg)
	for _, tt := range types {
		entry := style.Get(tt)
		if !entry.Colour.IsSet() {
			continue
		}
		out.Foreground = chromaColor(entry.Colour)
		// chroma entries inherit the page background
		if c := chromaColor(entry.Background); c != bg {
			out.Background = c
		}
		out.Attributes = out.Attributes.
			set(AttrBold, entry.Bold == chroma.Yes).
			set(AttrItalic, entry.Italic == chroma.Yes).
			set(AttrUnderline, entry.Underline == chroma.Yes)
		break
	}
	return out
}

func chromaColor(c chroma.Colour) Color {
	if !c.IsSet() {
		return ColorDefault
	}
	return ColorFromRGB(c.Red(), c.Green(), c.Blue())
}
