package syntax

import (
	"slices"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/ksyntax/internal/grammar"
)

// CommentPosition tells where a single-line comment marker is inserted.
type CommentPosition uint8

// Single-line comment positions.
const (
	CommentPositionStartOfLine CommentPosition = iota
	CommentPositionAfterWhitespace
)

// Definition is the highlighting definition of one language.
//
// Metadata is available immediately. Everything else is loaded and
// resolved on first use, which may load referenced definitions too.
type Definition struct {
	repo   *Repository
	header atomic.Pointer[grammar.Header]
	data   atomic.Pointer[definitionData]
}

// definitionData is one loaded instance of a definition. Reloading creates
// a new instance with a new id; States of the old instance become stale.
type definitionData struct {
	id   uuid.UUID
	def  *Definition
	name string

	contexts       []*Context
	contextsByName map[string]*Context

	keywordLists map[string]*KeywordList
	formats      map[string]Format
	formatList   []Format

	delimiters    *wordDelimiters
	caseSensitive bool

	foldingEnabled     bool
	indentationFolding bool
	foldingIgnoreList  []string
	comments           grammar.Comments

	// definitions referenced by context switches, includes and keyword
	// list includes
	included []*Definition

	// rules declared by this definition, before include inlining
	rules    []ruleRef
	warnings []Warning
}

type ruleRef struct {
	context *Context
	index   int
	rule    *Rule
}

func newDefinitionData(d *Definition, name string) *definitionData {
	return &definitionData{
		id:             uuid.New(),
		def:            d,
		name:           name,
		contextsByName: make(map[string]*Context),
		keywordLists:   make(map[string]*KeywordList),
		formats:        make(map[string]Format),
		delimiters:     newWordDelimiters(),
		caseSensitive:  true,
	}
}

func (data *definitionData) initialContext() *Context {
	if len(data.contexts) == 0 {
		return nil
	}
	return data.contexts[0]
}

func (data *definitionData) isValid() bool {
	return len(data.contexts) > 0
}

func (data *definitionData) addIncluded(d *Definition) {
	if d != data.def && !slices.Contains(data.included, d) {
		data.included = append(data.included, d)
	}
}

func (d *Definition) meta() *grammar.Header {
	if h := d.header.Load(); h != nil {
		return h
	}
	return &grammar.Header{}
}

// load returns the loaded data, loading it if needed.
func (d *Definition) load() *definitionData {
	if data := d.data.Load(); data != nil {
		return data
	}
	return d.repo.load(d)
}

// Name returns the unique name of the definition.
func (d *Definition) Name() string {
	return d.meta().Name
}

// Section returns the menu section, e.g. "Sources".
func (d *Definition) Section() string {
	return d.meta().Section
}

// Version returns the descriptor version.
func (d *Definition) Version() string {
	return d.meta().Version
}

// Priority is used to rank definitions matching the same file name.
func (d *Definition) Priority() int {
	return d.meta().Priority
}

// IsHidden reports whether the definition is for internal use only.
func (d *Definition) IsHidden() bool {
	return d.meta().Hidden
}

// Extensions returns the file name wildcards, e.g. "*.go".
func (d *Definition) Extensions() []string {
	return slices.Clone(d.meta().Extensions)
}

// MimeTypes returns the mime types the definition handles.
func (d *Definition) MimeTypes() []string {
	return slices.Clone(d.meta().MimeTypes)
}

// AlternativeNames returns additional names the definition can be found by.
func (d *Definition) AlternativeNames() []string {
	return slices.Clone(d.meta().AlternativeNames)
}

// Author returns the descriptor author.
func (d *Definition) Author() string {
	return d.meta().Author
}

// License returns the descriptor license.
func (d *Definition) License() string {
	return d.meta().License
}

// Indenter returns the name of the preferred indenter.
func (d *Definition) Indenter() string {
	return d.meta().Indenter
}

// Style returns the language style, e.g. "C".
func (d *Definition) Style() string {
	return d.meta().Style
}

// IsLoaded reports whether the definition has been loaded.
func (d *Definition) IsLoaded() bool {
	return d.data.Load() != nil
}

// IsValid reports whether the definition loaded with at least one context.
func (d *Definition) IsValid() bool {
	return d.load().isValid()
}

// Formats returns the formats of the definition in declaration order.
func (d *Definition) Formats() []Format {
	return slices.Clone(d.load().formatList)
}

// Format returns the named format, or the invalid Format.
func (d *Definition) Format(name string) Format {
	return d.load().formats[name]
}

// KeywordList returns the named keyword list, or nil.
func (d *Definition) KeywordList(name string) *KeywordList {
	return d.load().keywordLists[name]
}

// KeywordLists returns the names of all keyword lists, sorted.
func (d *Definition) KeywordLists() []string {
	data := d.load()
	names := make([]string, 0, len(data.keywordLists))
	for name := range data.keywordLists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InitialContext returns the first context, or nil for an invalid definition.
func (d *Definition) InitialContext() *Context {
	return d.load().initialContext()
}

// Context returns the named context, or nil.
func (d *Definition) Context(name string) *Context {
	return d.load().contextsByName[name]
}

// Contexts returns all contexts in declaration order.
func (d *Definition) Contexts() []*Context {
	return slices.Clone(d.load().contexts)
}

// FoldingEnabled reports whether any rule opens or closes a folding region,
// or indentation based folding is on.
func (d *Definition) FoldingEnabled() bool {
	data := d.load()
	return data.foldingEnabled || data.indentationFolding
}

// IndentationBasedFoldingEnabled reports whether the language folds by
// indentation.
func (d *Definition) IndentationBasedFoldingEnabled() bool {
	return d.load().indentationFolding
}

// FoldingIgnoreList returns patterns of lines that indentation based folding
// skips.
func (d *Definition) FoldingIgnoreList() []string {
	return slices.Clone(d.load().foldingIgnoreList)
}

// SingleLineCommentMarker returns the single-line comment marker, if any.
func (d *Definition) SingleLineCommentMarker() string {
	return d.load().comments.SingleLine
}

// SingleLineCommentPosition returns where the single-line marker goes.
func (d *Definition) SingleLineCommentPosition() CommentPosition {
	if strings.EqualFold(d.load().comments.SingleLinePosition, "afterwhitespace") {
		return CommentPositionAfterWhitespace
	}
	return CommentPositionStartOfLine
}

// MultiLineCommentMarker returns the start and end multi-line markers.
func (d *Definition) MultiLineCommentMarker() (start, end string) {
	c := d.load().comments
	return c.MultiLineStart, c.MultiLineEnd
}

// IsWordDelimiter reports whether r separates words in this language.
func (d *Definition) IsWordDelimiter(r rune) bool {
	return d.load().delimiters.contains(r)
}

// IncludedDefinitions returns every definition this one references,
// directly or transitively, excluding itself.
func (d *Definition) IncludedDefinitions() []*Definition {
	var out []*Definition
	seen := map[*Definition]bool{d: true}
	queue := []*Definition{d}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, inc := range cur.load().included {
			if seen[inc] {
				continue
			}
			seen[inc] = true
			out = append(out, inc)
			queue = append(queue, inc)
		}
	}
	return out
}

// Warnings returns the problems found while loading the definition.
func (d *Definition) Warnings() []Warning {
	return slices.Clone(d.load().warnings)
}
