package syntax

import (
	"slices"
	"unicode"

	"go.uber.org/zap"
)

// maxLoopIterations bounds every loop that may not make progress on a
// broken definition: stalled matching, end-of-line and empty-line switches.
const maxLoopIterations = 1024

// Sink receives the results of highlighting one line. Offsets and lengths
// are in runes.
type Sink interface {
	// ApplyFormat is called for every maximal run of text sharing one
	// format. The runs of a line tile it exactly; an empty line gets one
	// zero-length call.
	ApplyFormat(offset, length int, format Format)

	// ApplyFolding is called for every folding region begin or end marker.
	ApplyFolding(offset, length int, region FoldingRegion)
}

// SinkFuncs adapts plain functions to a Sink. Nil functions are skipped.
type SinkFuncs struct {
	Format  func(offset, length int, format Format)
	Folding func(offset, length int, region FoldingRegion)
}

// ApplyFormat implements Sink.
func (s SinkFuncs) ApplyFormat(offset, length int, format Format) {
	if s.Format != nil {
		s.Format(offset, length, format)
	}
}

// ApplyFolding implements Sink.
func (s SinkFuncs) ApplyFolding(offset, length int, region FoldingRegion) {
	if s.Folding != nil {
		s.Folding(offset, length, region)
	}
}

// Highlighter highlights lines of one definition. It holds no per-document
// data and may be used from several goroutines at once.
type Highlighter struct {
	def    *Definition
	logger *zap.Logger
}

// NewHighlighter returns a highlighter for def. A nil def highlights
// everything with the invalid Format.
func NewHighlighter(def *Definition) *Highlighter {
	h := &Highlighter{def: def, logger: zap.NewNop()}
	if def != nil && def.repo != nil {
		h.logger = def.repo.logger
	}
	return h
}

// Definition returns the highlighted definition.
func (h *Highlighter) Definition() *Definition {
	return h.def
}

// HighlightLine highlights text, a single line without its terminator,
// starting from state, the State returned for the previous line. It reports
// formats and folding markers to sink and returns the State for the next
// line. The State passed in is not modified.
func (h *Highlighter) HighlightLine(text string, state State, sink Sink) State {
	line := []rune(text)

	if h.def == nil || h.def.repo == nil {
		sink.ApplyFormat(0, len(line), Format{})
		return State{}
	}
	data := h.def.load()
	if !data.isValid() {
		sink.ApplyFormat(0, len(line), Format{})
		return State{}
	}

	w := newStateWriter(state, data)
	if len(line) == 0 {
		h.emptyLine(w, sink)
		return w.state()
	}

	if !h.scan(line, w, sink) {
		h.lineEnd(w)
	}
	return w.state()
}

// emptyLine applies the empty-line switch, or the end-of-line switch while
// the former is #stay, until both are #stay.
func (h *Highlighter) emptyLine(w *stateWriter, sink Sink) {
	for i := 0; ; i++ {
		ctx := w.top().context
		sw := ctx.lineEmpty
		if sw.IsStay() {
			sw = ctx.lineEnd
		}
		if sw.IsStay() {
			break
		}
		if !w.switchContext(sw, nil) {
			break
		}
		if i >= maxLoopIterations {
			h.logger.Debug("empty line switch loop aborted", zap.String("context", ctx.QualifiedName()))
			break
		}
	}
	sink.ApplyFormat(0, 0, w.top().context.attribute)
}

func (h *Highlighter) lineEnd(w *stateWriter) {
	for i := 0; ; i++ {
		ctx := w.top().context
		if ctx.lineEnd.IsStay() {
			return
		}
		if !w.switchContext(ctx.lineEnd, nil) {
			return
		}
		if i >= maxLoopIterations {
			h.logger.Debug("line end switch loop aborted", zap.String("context", ctx.QualifiedName()))
			return
		}
	}
}

// scan runs the rules over a non-empty line. It reports whether the line
// ended in a line continuation.
func (h *Highlighter) scan(line []rune, w *stateWriter, sink Sink) (continuation bool) {
	firstNonSpace := 0
	for firstNonSpace < len(line) && unicode.IsSpace(line[firstNonSpace]) {
		firstNonSpace++
	}

	var (
		offset      int
		beginOffset int
		current     Format
		skips       skipCache

		lastOffset int
		stalls     int
	)

	for offset < len(line) {
		if offset <= lastOffset {
			stalls++
			if stalls > maxLoopIterations {
				h.logger.Debug("line aborted, no progress",
					zap.String("context", w.top().context.QualifiedName()),
					zap.Int("offset", offset),
				)
				break
			}
		} else {
			lastOffset = offset
			stalls = 0
		}

		top := w.top()
		ctx := top.context
		if ctx.hasDynamicRule && !slices.Equal(top.captures, skips.captures) {
			skips.reset(top.captures)
		}

		var (
			newOffset = offset
			next      Format
			lookAhead bool
		)
		for _, rule := range ctx.rules {
			if rule.firstNonSpace && offset > firstNonSpace {
				continue
			}
			if rule.column >= 0 && rule.column != offset {
				continue
			}
			if offset < skips.lookup(rule) {
				continue
			}

			res := rule.match(line, offset, top.captures)
			if res.NewOffset <= offset {
				if res.SkipOffset > offset {
					skips.store(rule, res.SkipOffset)
				}
				continue
			}
			newOffset = res.NewOffset

			// end before begin; the end of a rule doing both is zero length
			length := newOffset - offset
			if rule.lookAhead {
				length = 0
			}
			if rule.endRegion.IsValid() {
				if rule.beginRegion.IsValid() {
					sink.ApplyFolding(offset, 0, rule.endRegion)
				} else {
					sink.ApplyFolding(offset, length, rule.endRegion)
				}
			}
			if rule.beginRegion.IsValid() {
				sink.ApplyFolding(offset, length, rule.beginRegion)
			}

			w.switchContext(rule.context, res.Captures)
			if rule.lookAhead {
				lookAhead = true
				break
			}

			next = rule.attribute
			if !next.IsValid() {
				next = w.top().context.attribute
			}
			if rule.kind == RuleLineContinue && newOffset == len(line) {
				continuation = true
			}
			break
		}
		if lookAhead {
			continue
		}

		if newOffset <= offset {
			if ctx.fallsThrough {
				w.switchContext(ctx.fallthroughSwitch, nil)
				continue
			}
			newOffset = offset + 1
			next = ctx.attribute
		}

		if offset == 0 || next.ID() != current.ID() {
			if offset > beginOffset {
				sink.ApplyFormat(beginOffset, offset-beginOffset, current)
			}
			beginOffset = offset
			current = next
		}
		offset = newOffset
	}

	if beginOffset < len(line) {
		if offset == beginOffset {
			// aborted before anything was consumed
			current = w.top().context.attribute
		}
		sink.ApplyFormat(beginOffset, len(line)-beginOffset, current)
	}
	return continuation
}

// skipCache remembers per rule the first offset at which it can match
// again on the current line.
type skipCache struct {
	entries []skipEntry
	// captures the cached offsets of dynamic rules were computed with
	captures []string
}

type skipEntry struct {
	rule   *Rule
	offset int
}

func (c *skipCache) reset(captures []string) {
	c.entries = c.entries[:0]
	c.captures = captures
}

func (c *skipCache) lookup(r *Rule) int {
	for _, e := range c.entries {
		if e.rule == r {
			return e.offset
		}
	}
	return 0
}

func (c *skipCache) store(r *Rule, offset int) {
	for i := range c.entries {
		if c.entries[i].rule == r {
			c.entries[i].offset = offset
			return
		}
	}
	c.entries = append(c.entries, skipEntry{rule: r, offset: offset})
}
