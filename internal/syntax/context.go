package syntax

import "slices"

type resolveState uint8

const (
	unresolved resolveState = iota
	resolving
	resolved
)

// Context is one lexical mode of a Definition: an ordered list of rules
// plus the transitions applied at line boundaries and when nothing matches.
//
// A Context is immutable once its Definition is published.
type Context struct {
	def   *definitionData
	index int
	name  string

	attribute Format

	lineEnd           ContextSwitch
	lineEmpty         ContextSwitch
	fallthroughSwitch ContextSwitch
	fallsThrough      bool

	indentationFolding bool
	dynamic            bool
	hasDynamicRule     bool

	rules   []*Rule
	resolve resolveState
}

// Name returns the context name, unique within its definition.
func (c *Context) Name() string {
	return c.name
}

// DefinitionName returns the name of the owning definition.
func (c *Context) DefinitionName() string {
	return c.def.name
}

// QualifiedName returns "Name##Definition".
func (c *Context) QualifiedName() string {
	return c.name + "##" + c.def.name
}

// Attribute returns the format used for text no rule claims.
func (c *Context) Attribute() Format {
	return c.attribute
}

// Rules returns the rules in match priority order, includes inlined.
func (c *Context) Rules() []*Rule {
	return slices.Clone(c.rules)
}

// LineEndContext returns the switch applied at the end of every line.
func (c *Context) LineEndContext() ContextSwitch {
	return c.lineEnd
}

// LineEmptyContext returns the switch applied on empty lines.
func (c *Context) LineEmptyContext() ContextSwitch {
	return c.lineEmpty
}

// FallthroughContext returns the switch applied when no rule matches.
func (c *Context) FallthroughContext() ContextSwitch {
	return c.fallthroughSwitch
}

// Fallthrough reports whether an unmatched character switches context
// instead of being consumed.
func (c *Context) Fallthrough() bool {
	return c.fallsThrough
}

// IsDynamic reports whether the context keeps the captures of the rule that
// pushed it.
func (c *Context) IsDynamic() bool {
	return c.dynamic
}

// HasDynamicRule reports whether any rule of the context references captures.
func (c *Context) HasDynamicRule() bool {
	return c.hasDynamicRule
}

// IndentationBasedFoldingEnabled reports whether lines in this context fold
// by indentation.
func (c *Context) IndentationBasedFoldingEnabled() bool {
	return c.indentationFolding
}

// keepsCaptures reports whether a frame of this context stores captures.
func (c *Context) keepsCaptures() bool {
	return c.dynamic || c.hasDynamicRule
}
