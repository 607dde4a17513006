// Package grammar defines the descriptor tree consumed by the syntax engine.
//
// A descriptor is the already-validated, markup-free form of one language's
// highlighting definition: its metadata, an ordered list of contexts with
// their rules, the keyword lists and the named formats (item data).
// Descriptors can be written in YAML or TOML and served to the engine
// through a Source.
//
// # Example
//
//	name: Demo
//	extensions: ["*.demo"]
//	contexts:
//	  - name: Normal
//	    attribute: Normal Text
//	    rules:
//	      - kind: DetectChar
//	        char: "#"
//	        attribute: Comment
//	        context: Comment
//	  - name: Comment
//	    attribute: Comment
//	    lineEndContext: "#pop"
//	formats:
//	  - name: Normal Text
//	    style: dsNormal
//	  - name: Comment
//	    style: dsComment
package grammar

// Header holds the metadata of a grammar that is needed without loading
// its contexts, e.g. for file name lookup.
type Header struct {
	Name             string   `yaml:"name" toml:"name"`
	Section          string   `yaml:"section,omitempty" toml:"section,omitempty"`
	Version          string   `yaml:"version,omitempty" toml:"version,omitempty"`
	Priority         int      `yaml:"priority,omitempty" toml:"priority,omitempty"`
	Hidden           bool     `yaml:"hidden,omitempty" toml:"hidden,omitempty"`
	Extensions       []string `yaml:"extensions,omitempty" toml:"extensions,omitempty"`
	MimeTypes        []string `yaml:"mimetypes,omitempty" toml:"mimetypes,omitempty"`
	AlternativeNames []string `yaml:"alternativeNames,omitempty" toml:"alternativeNames,omitempty"`
	Author           string   `yaml:"author,omitempty" toml:"author,omitempty"`
	License          string   `yaml:"license,omitempty" toml:"license,omitempty"`
	Indenter         string   `yaml:"indenter,omitempty" toml:"indenter,omitempty"`
	Style            string   `yaml:"style,omitempty" toml:"style,omitempty"`
}

// Grammar is the complete descriptor of one language.
type Grammar struct {
	Header `yaml:",inline"`

	// CaseSensitive is the default case sensitivity of keyword rules.
	// Nil means case-sensitive.
	CaseSensitive *bool `yaml:"caseSensitive,omitempty" toml:"caseSensitive,omitempty"`

	// WeakDeliminator removes characters from the default word delimiters.
	WeakDeliminator string `yaml:"weakDeliminator,omitempty" toml:"weakDeliminator,omitempty"`

	// AdditionalDeliminator adds characters to the default word delimiters.
	AdditionalDeliminator string `yaml:"additionalDeliminator,omitempty" toml:"additionalDeliminator,omitempty"`

	IndentationBasedFolding bool     `yaml:"indentationBasedFolding,omitempty" toml:"indentationBasedFolding,omitempty"`
	FoldingIgnoreList       []string `yaml:"foldingIgnoreList,omitempty" toml:"foldingIgnoreList,omitempty"`

	Comments Comments `yaml:"comments,omitempty" toml:"comments,omitempty"`

	// Contexts are in declaration order; the first one is the initial context.
	Contexts     []Context     `yaml:"contexts" toml:"contexts"`
	KeywordLists []KeywordList `yaml:"keywordLists,omitempty" toml:"keywordLists,omitempty"`
	Formats      []Format      `yaml:"formats,omitempty" toml:"formats,omitempty"`
}

// Comments describes the comment markers of a language.
type Comments struct {
	SingleLine         string `yaml:"singleLine,omitempty" toml:"singleLine,omitempty"`
	SingleLinePosition string `yaml:"singleLinePosition,omitempty" toml:"singleLinePosition,omitempty"`
	MultiLineStart     string `yaml:"multiLineStart,omitempty" toml:"multiLineStart,omitempty"`
	MultiLineEnd       string `yaml:"multiLineEnd,omitempty" toml:"multiLineEnd,omitempty"`
	MultiLineRegion    string `yaml:"multiLineRegion,omitempty" toml:"multiLineRegion,omitempty"`
}

// Context describes one lexical mode of a grammar.
type Context struct {
	Name      string `yaml:"name" toml:"name"`
	Attribute string `yaml:"attribute,omitempty" toml:"attribute,omitempty"`

	LineEndContext     string `yaml:"lineEndContext,omitempty" toml:"lineEndContext,omitempty"`
	LineEmptyContext   string `yaml:"lineEmptyContext,omitempty" toml:"lineEmptyContext,omitempty"`
	FallthroughContext string `yaml:"fallthroughContext,omitempty" toml:"fallthroughContext,omitempty"`
	Fallthrough        bool   `yaml:"fallthrough,omitempty" toml:"fallthrough,omitempty"`

	Dynamic                   bool `yaml:"dynamic,omitempty" toml:"dynamic,omitempty"`
	NoIndentationBasedFolding bool `yaml:"noIndentationBasedFolding,omitempty" toml:"noIndentationBasedFolding,omitempty"`

	Rules []Rule `yaml:"rules,omitempty" toml:"rules,omitempty"`
}

// Rule describes one matcher. Kind selects the matcher; the payload fields
// that apply depend on it:
//
//	AnyChar, StringDetect, WordDetect  String
//	keyword                            String (keyword list name)
//	RegExpr                            String (pattern), Minimal
//	DetectChar, LineContinue           Char
//	Detect2Chars, RangeDetect          Char, Char1
//	IncludeRules                       Context ("Name", "Name##Grammar" or "##Grammar"), IncludeAttrib
type Rule struct {
	Kind      string `yaml:"kind" toml:"kind"`
	Attribute string `yaml:"attribute,omitempty" toml:"attribute,omitempty"`
	Context   string `yaml:"context,omitempty" toml:"context,omitempty"`

	BeginRegion string `yaml:"beginRegion,omitempty" toml:"beginRegion,omitempty"`
	EndRegion   string `yaml:"endRegion,omitempty" toml:"endRegion,omitempty"`

	LookAhead     bool `yaml:"lookAhead,omitempty" toml:"lookAhead,omitempty"`
	FirstNonSpace bool `yaml:"firstNonSpace,omitempty" toml:"firstNonSpace,omitempty"`
	Column        *int `yaml:"column,omitempty" toml:"column,omitempty"`
	Dynamic       bool `yaml:"dynamic,omitempty" toml:"dynamic,omitempty"`

	Char        string `yaml:"char,omitempty" toml:"char,omitempty"`
	Char1       string `yaml:"char1,omitempty" toml:"char1,omitempty"`
	String      string `yaml:"string,omitempty" toml:"string,omitempty"`
	Insensitive *bool  `yaml:"insensitive,omitempty" toml:"insensitive,omitempty"`
	Minimal     bool   `yaml:"minimal,omitempty" toml:"minimal,omitempty"`

	WeakDeliminator       string `yaml:"weakDeliminator,omitempty" toml:"weakDeliminator,omitempty"`
	AdditionalDeliminator string `yaml:"additionalDeliminator,omitempty" toml:"additionalDeliminator,omitempty"`

	IncludeAttrib bool `yaml:"includeAttrib,omitempty" toml:"includeAttrib,omitempty"`
}

// KeywordList is a named list of words. Includes name other lists, either
// local ("name") or from another grammar ("name##Grammar").
type KeywordList struct {
	Name     string   `yaml:"name" toml:"name"`
	Items    []string `yaml:"items,omitempty" toml:"items,omitempty"`
	Includes []string `yaml:"includes,omitempty" toml:"includes,omitempty"`
}

// Format is a named attribute (item data). Style is a default text style
// name such as "dsKeyword"; the remaining fields override it.
type Format struct {
	Name  string `yaml:"name" toml:"name"`
	Style string `yaml:"style,omitempty" toml:"style,omitempty"`

	Color              string `yaml:"color,omitempty" toml:"color,omitempty"`
	SelColor           string `yaml:"selColor,omitempty" toml:"selColor,omitempty"`
	BackgroundColor    string `yaml:"backgroundColor,omitempty" toml:"backgroundColor,omitempty"`
	SelBackgroundColor string `yaml:"selBackgroundColor,omitempty" toml:"selBackgroundColor,omitempty"`

	Bold          *bool `yaml:"bold,omitempty" toml:"bold,omitempty"`
	Italic        *bool `yaml:"italic,omitempty" toml:"italic,omitempty"`
	Underline     *bool `yaml:"underline,omitempty" toml:"underline,omitempty"`
	StrikeOut     *bool `yaml:"strikeOut,omitempty" toml:"strikeOut,omitempty"`
	SpellChecking *bool `yaml:"spellChecking,omitempty" toml:"spellChecking,omitempty"`
}

// IsCaseSensitive reports the effective default keyword case sensitivity.
func (g *Grammar) IsCaseSensitive() bool {
	return g.CaseSensitive == nil || *g.CaseSensitive
}
