// Package syntax provides the rule-matching and context-switching engine
// behind syntax highlighting.
//
// Given one line of text and the State reached at the end of the previous
// line, the engine decides which spans of the line get which Format, emits
// folding region markers, and returns the State for the next line. It is a
// stream classifier, not a parser: every decision is local to the current
// line and the stack of lexical contexts carried in the State.
//
// # Architecture
//
//	┌──────────────┐   descriptors   ┌──────────────┐
//	│ grammar.Source│ ──────────────▶ │  Repository  │  name / file lookup,
//	└──────────────┘                 │              │  format + folding ids
//	                                 └──────┬───────┘
//	                                        │ lazy load + resolve
//	                                        ▼
//	                                 ┌──────────────┐
//	                                 │  Definition  │  contexts (arena),
//	                                 │              │  keyword lists, formats
//	                                 └──────┬───────┘
//	                                        │
//	    line + State ──▶ ┌──────────────┐   │
//	                     │ Highlighter  │ ◀─┘
//	                     └──────┬───────┘
//	                            │ ApplyFormat / ApplyFolding
//	                            ▼
//	                          Sink
//
// # Contexts and Rules
//
// A Context is an ordered list of Rules. At every offset the Highlighter
// tries the rules of the context on top of the State stack in declaration
// order; the first rule that consumes text wins. A rule may switch the
// context (push, pop, pop-then-push) through its ContextSwitch. Contexts
// additionally carry end-of-line, empty-line and fallthrough switches.
//
// Context switches are written as:
//
//	#stay              no change
//	#pop               pop one context
//	#pop#pop!Name      pop two contexts, then push Name
//	Name               push Name of the same grammar
//	Name##Other        push Name of grammar Other
//	##Other            push the initial context of grammar Other
//
// # Offsets
//
// Offsets and lengths reported to a Sink are counted in runes of the line.
//
// # Concurrency
//
// Definitions are loaded lazily on first use. Loading is serialized by the
// owning Repository and a Definition becomes visible only once it is fully
// resolved, so a loaded Definition may be highlighted from many goroutines
// at once. A State is an immutable value; HighlightLine never modifies the
// State passed in.
//
// # Error Handling
//
// Problems in a descriptor never abort loading. The offending element is
// dropped, a Warning is recorded and logged, and the rest of the grammar
// still highlights. Runtime hazards such as context-switch cycles are
// bounded by fixed iteration limits, so HighlightLine always returns.
package syntax
