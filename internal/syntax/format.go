package syntax

// TextStyle is one of the default text styles a Format maps onto.
type TextStyle uint8

// Default text styles.
const (
	TextStyleNormal TextStyle = iota
	TextStyleKeyword
	TextStyleFunction
	TextStyleVariable
	TextStyleControlFlow
	TextStyleOperator
	TextStyleBuiltIn
	TextStyleExtension
	TextStylePreprocessor
	TextStyleAttribute
	TextStyleChar
	TextStyleSpecialChar
	TextStyleString
	TextStyleVerbatimString
	TextStyleSpecialString
	TextStyleImport
	TextStyleDataType
	TextStyleDecVal
	TextStyleBaseN
	TextStyleFloat
	TextStyleConstant
	TextStyleComment
	TextStyleDocumentation
	TextStyleAnnotation
	TextStyleCommentVar
	TextStyleRegionMarker
	TextStyleInformation
	TextStyleWarning
	TextStyleAlert
	TextStyleOthers
	TextStyleError

	textStyleCount
)

var textStyleNames = [textStyleCount]string{
	"dsNormal",
	"dsKeyword",
	"dsFunction",
	"dsVariable",
	"dsControlFlow",
	"dsOperator",
	"dsBuiltIn",
	"dsExtension",
	"dsPreprocessor",
	"dsAttribute",
	"dsChar",
	"dsSpecialChar",
	"dsString",
	"dsVerbatimString",
	"dsSpecialString",
	"dsImport",
	"dsDataType",
	"dsDecVal",
	"dsBaseN",
	"dsFloat",
	"dsConstant",
	"dsComment",
	"dsDocumentation",
	"dsAnnotation",
	"dsCommentVar",
	"dsRegionMarker",
	"dsInformation",
	"dsWarning",
	"dsAlert",
	"dsOthers",
	"dsError",
}

// String returns the descriptor name of the style, e.g. "dsKeyword".
func (s TextStyle) String() string {
	if s < textStyleCount {
		return textStyleNames[s]
	}
	return "unknown"
}

// ParseTextStyle converts a descriptor style name into a TextStyle.
func ParseTextStyle(name string) (TextStyle, bool) {
	for i, n := range textStyleNames {
		if n == name {
			return TextStyle(i), true
		}
	}
	return TextStyleNormal, false
}

// TextStyles returns every default text style in order.
func TextStyles() []TextStyle {
	styles := make([]TextStyle, textStyleCount)
	for i := range styles {
		styles[i] = TextStyle(i)
	}
	return styles
}

// FormatOverrides are the per-format deviations from the text style.
// Empty colors and nil flags mean "use the theme".
type FormatOverrides struct {
	Color              string
	SelectedColor      string
	Background         string
	SelectedBackground string

	Bold          *bool
	Italic        *bool
	Underline     *bool
	StrikeThrough *bool
}

// IsEmpty reports whether no override is set.
func (o FormatOverrides) IsEmpty() bool {
	return o.Color == "" && o.SelectedColor == "" && o.Background == "" && o.SelectedBackground == "" &&
		o.Bold == nil && o.Italic == nil && o.Underline == nil && o.StrikeThrough == nil
}

// Format is an opaque handle for a named attribute of a grammar.
// The zero value is the invalid format.
type Format struct {
	d *formatData
}

type formatData struct {
	id         int
	name       string
	definition string
	style      TextStyle
	overrides  FormatOverrides
	spellCheck bool
}

// IsValid reports whether the format refers to a grammar attribute.
func (f Format) IsValid() bool {
	return f.d != nil
}

// ID returns a repository-unique identifier; 0 for the invalid format.
func (f Format) ID() int {
	if f.d == nil {
		return 0
	}
	return f.d.id
}

// Name returns the attribute name.
func (f Format) Name() string {
	if f.d == nil {
		return ""
	}
	return f.d.name
}

// DefinitionName returns the name of the grammar that declared the format.
func (f Format) DefinitionName() string {
	if f.d == nil {
		return ""
	}
	return f.d.definition
}

// TextStyle returns the default text style the format is based on.
func (f Format) TextStyle() TextStyle {
	if f.d == nil {
		return TextStyleNormal
	}
	return f.d.style
}

// Overrides returns the explicit deviations from the text style.
func (f Format) Overrides() FormatOverrides {
	if f.d == nil {
		return FormatOverrides{}
	}
	return f.d.overrides
}

// IsDefaultTextStyle reports whether the format uses its text style unchanged.
func (f Format) IsDefaultTextStyle() bool {
	return f.d == nil || f.d.overrides.IsEmpty()
}

// SpellCheck reports whether text in this format should be spell checked.
func (f Format) SpellCheck() bool {
	if f.d == nil {
		return true
	}
	return f.d.spellCheck
}

// String returns "definition:name" for debugging.
func (f Format) String() string {
	if f.d == nil {
		return "<invalid>"
	}
	return f.d.definition + ":" + f.d.name
}
