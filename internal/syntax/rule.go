package syntax

// RuleKind selects the matcher of a Rule.
type RuleKind uint8

// Rule kinds. The descriptor names are the ones returned by String.
const (
	RuleInvalid RuleKind = iota
	RuleAnyChar
	RuleDetectChar
	RuleDetect2Chars
	RuleDetectIdentifier
	RuleDetectSpaces
	RuleFloat
	RuleHlCChar
	RuleHlCHex
	RuleHlCOct
	RuleHlCStringChar
	RuleIncludeRules
	RuleInt
	RuleKeyword
	RuleLineContinue
	RuleRangeDetect
	RuleRegExpr
	RuleStringDetect
	RuleWordDetect

	ruleKindCount
)

var ruleKindNames = [ruleKindCount]string{
	"",
	"AnyChar",
	"DetectChar",
	"Detect2Chars",
	"DetectIdentifier",
	"DetectSpaces",
	"Float",
	"HlCChar",
	"HlCHex",
	"HlCOct",
	"HlCStringChar",
	"IncludeRules",
	"Int",
	"keyword",
	"LineContinue",
	"RangeDetect",
	"RegExpr",
	"StringDetect",
	"WordDetect",
}

// String returns the descriptor name of the kind.
func (k RuleKind) String() string {
	if k > RuleInvalid && k < ruleKindCount {
		return ruleKindNames[k]
	}
	return "invalid"
}

// ParseRuleKind converts a descriptor kind name into a RuleKind.
func ParseRuleKind(name string) (RuleKind, bool) {
	for i := RuleAnyChar; i < ruleKindCount; i++ {
		if ruleKindNames[i] == name {
			return i, true
		}
	}
	return RuleInvalid, false
}

// usesDelimiters reports whether the kind consults the word delimiters.
func (k RuleKind) usesDelimiters() bool {
	switch k {
	case RuleKeyword, RuleWordDetect, RuleInt, RuleFloat, RuleHlCHex, RuleHlCOct:
		return true
	}
	return false
}

// supportsDynamic reports whether the kind can reference captures.
func (k RuleKind) supportsDynamic() bool {
	switch k {
	case RuleDetectChar, RuleStringDetect, RuleRegExpr:
		return true
	}
	return false
}

// MatchResult is the outcome of testing one rule at one offset.
//
// NewOffset equal to the tested offset means no match. SkipOffset, when
// larger than NewOffset, is the first offset at which the rule can match
// again on this line; the rule need not be tested before it.
type MatchResult struct {
	NewOffset  int
	SkipOffset int
	Captures   []string
}

// Rule is one matcher of a Context. The kind decides which of the payload
// fields are used.
type Rule struct {
	kind      RuleKind
	attribute Format
	context   ContextSwitch

	beginRegion FoldingRegion
	endRegion   FoldingRegion

	column        int
	firstNonSpace bool
	lookAhead     bool
	dynamic       bool
	insensitive   bool

	// chars holds the rune payload: the set of AnyChar, the character of
	// DetectChar and LineContinue, the pair of Detect2Chars and RangeDetect.
	chars []rune
	// text is the StringDetect / WordDetect string.
	text []rune
	// pattern is the raw StringDetect pattern of dynamic rules.
	pattern      string
	captureIndex int

	delimiters *wordDelimiters
	keywords   *KeywordList
	regex      *regexRule
	include    *includeTarget
}

// includeTarget is the unresolved destination of an IncludeRules rule.
type includeTarget struct {
	contextName    string
	definitionName string
	attribute      bool
}

// Kind returns the matcher kind.
func (r *Rule) Kind() RuleKind {
	return r.kind
}

// Attribute returns the rule format; invalid if the rule uses the context's.
func (r *Rule) Attribute() Format {
	return r.attribute
}

// ContextSwitch returns the transition applied when the rule matches.
func (r *Rule) ContextSwitch() ContextSwitch {
	return r.context
}

// BeginRegion returns the folding region opened by the rule, if any.
func (r *Rule) BeginRegion() FoldingRegion {
	return r.beginRegion
}

// EndRegion returns the folding region closed by the rule, if any.
func (r *Rule) EndRegion() FoldingRegion {
	return r.endRegion
}

// Column returns the column the rule is restricted to, or -1.
func (r *Rule) Column() int {
	return r.column
}

// FirstNonSpace reports whether the rule only matches in leading white space
// or at the first non-space character.
func (r *Rule) FirstNonSpace() bool {
	return r.firstNonSpace
}

// IsLookAhead reports whether a match switches context without consuming.
func (r *Rule) IsLookAhead() bool {
	return r.lookAhead
}

// IsDynamic reports whether the rule pattern references captures.
func (r *Rule) IsDynamic() bool {
	return r.dynamic
}

// Match tests the rule at offset. Captures are those of the context on top
// of the State, used by dynamic rules. Offset must be inside text.
func (r *Rule) Match(text []rune, offset int, captures []string) MatchResult {
	if offset < 0 || offset >= len(text) {
		return MatchResult{NewOffset: offset}
	}
	return r.match(text, offset, captures)
}
