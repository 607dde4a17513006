package highlight

import (
	"cmp"
	"math"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/ksyntax/internal/syntax"
	"github.com/dshills/ksyntax/internal/theme"
)

// DefaultMaxCache is the number of lines whose spans are kept by default.
const DefaultMaxCache = 1000

// StyledSpan is a Span resolved against a theme.
type StyledSpan struct {
	Offset int
	Length int
	Style  theme.Style
}

// Option configures a Provider.
type Option func(*Provider)

// WithTheme sets the theme used by Styles.
func WithTheme(t *theme.Theme) Option {
	return func(p *Provider) {
		if t != nil {
			p.theme = t
		}
	}
}

// WithMaxCache limits the number of lines whose spans are cached.
// States are always kept for every highlighted line.
func WithMaxCache(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.maxCache = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// Provider highlights a document line by line on demand. It keeps the
// State at the end of every highlighted line so that a line can be
// highlighted without redoing the ones before it, and caches spans for a
// bounded number of lines.
//
// After InvalidateLines, lines are re-highlighted from the first invalid
// one until a line's input is unchanged, i.e. the same text starting from
// an equal State. From there on cached results are reused without
// highlighting again.
type Provider struct {
	mu sync.Mutex

	highlighter *syntax.Highlighter
	theme       *theme.Theme
	lineGetter  func(line uint32) string
	maxCache    int
	logger      *zap.Logger

	// lines[i] is the input and result of line i. lines[:valid] are
	// known to be up to date.
	lines []lineState
	valid int

	spans map[uint32]*lineSpans

	// highlighted counts HighlightLine calls.
	highlighted int
}

type lineState struct {
	text  string
	dirty bool
	start syntax.State
	end   syntax.State
}

type lineSpans struct {
	spans []Span
	folds []Fold
}

// NewProvider creates a provider highlighting with h and reading lines from
// getter. getter must return the text of a line without its terminator.
func NewProvider(h *syntax.Highlighter, getter func(line uint32) string, opts ...Option) *Provider {
	p := &Provider{
		highlighter: h,
		theme:       theme.DefaultTheme(),
		lineGetter:  getter,
		maxCache:    DefaultMaxCache,
		logger:      zap.NewNop(),
		spans:       make(map[uint32]*lineSpans),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetHighlighter replaces the highlighter and drops all cached data.
func (p *Provider) SetHighlighter(h *syntax.Highlighter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.highlighter = h
	p.clearCache()
}

// SetTheme sets the active theme.
func (p *Provider) SetTheme(t *theme.Theme) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t != nil {
		p.theme = t
	}
}

// Theme returns the current theme.
func (p *Provider) Theme() *theme.Theme {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.theme
}

// SetLineGetter replaces the line source and drops all cached data.
func (p *Provider) SetLineGetter(getter func(line uint32) string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lineGetter = getter
	p.clearCache()
}

// Spans returns a copy of the format spans of a line.
func (p *Provider) Spans(line uint32) []Span {
	p.mu.Lock()
	defer p.mu.Unlock()

	ls := p.lineSpans(line)
	if ls == nil {
		return nil
	}
	return slices.Clone(ls.spans)
}

// Folds returns a copy of the folding markers of a line.
func (p *Provider) Folds(line uint32) []Fold {
	p.mu.Lock()
	defer p.mu.Unlock()

	ls := p.lineSpans(line)
	if ls == nil {
		return nil
	}
	return slices.Clone(ls.folds)
}

// Styles returns the non-empty spans of a line with their theme style.
func (p *Provider) Styles(line uint32) []StyledSpan {
	p.mu.Lock()
	defer p.mu.Unlock()

	ls := p.lineSpans(line)
	if ls == nil {
		return nil
	}
	out := make([]StyledSpan, 0, len(ls.spans))
	for _, s := range Merge(ls.spans) {
		out = append(out, StyledSpan{
			Offset: s.Offset,
			Length: s.Length,
			Style:  p.theme.StyleFor(s.Format),
		})
	}
	return out
}

// State returns the State at the end of a line.
func (p *Provider) State(line uint32) syntax.State {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready() {
		return syntax.State{}
	}
	p.update(int(line))
	return p.lines[line].end
}

// InvalidateLines marks lines startLine through endLine as changed. Lines
// after endLine are assumed to have the same text as before; they are
// re-highlighted only as far as the change propagates. Pass math.MaxUint32
// as endLine when lines were inserted or removed.
func (p *Provider) InvalidateLines(startLine, endLine uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if endLine < startLine {
		return
	}
	p.valid = min(p.valid, int(startLine))

	if endLine == math.MaxUint32 {
		if int(startLine) < len(p.lines) {
			p.lines = p.lines[:startLine]
		}
		for line := range p.spans {
			if line >= startLine {
				delete(p.spans, line)
			}
		}
		return
	}

	for i := int(startLine); i <= int(endLine) && i < len(p.lines); i++ {
		p.lines[i].dirty = true
	}
	for line := range p.spans {
		if line >= startLine && line <= endLine {
			delete(p.spans, line)
		}
	}
}

// InvalidateAll drops all cached data.
func (p *Provider) InvalidateAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearCache()
}

func (p *Provider) ready() bool {
	return p.highlighter != nil && p.lineGetter != nil
}

// lineSpans returns the cached spans of line, highlighting it if needed.
// The caller holds mu.
func (p *Provider) lineSpans(line uint32) *lineSpans {
	if !p.ready() {
		return nil
	}
	p.update(int(line))
	if ls, ok := p.spans[line]; ok {
		return ls
	}

	// state is current but the spans were evicted
	ls := &lineSpans{}
	p.highlight(p.lines[line].text, p.lines[line].start, ls)
	p.store(line, ls)
	return ls
}

// update brings lines[:target+1] up to date. The caller holds mu.
func (p *Provider) update(target int) {
	for i := p.valid; i <= target; i++ {
		var start syntax.State
		if i > 0 {
			start = p.lines[i-1].end
		}
		text := p.lineGetter(uint32(i))

		if i < len(p.lines) {
			old := p.lines[i]
			if !old.dirty && old.text == text && old.start.Equal(start) {
				// unchanged input, so unchanged output
				continue
			}
		}

		ls := &lineSpans{}
		end := p.highlight(text, start, ls)
		st := lineState{text: text, start: start, end: end}
		if i < len(p.lines) {
			p.lines[i] = st
		} else {
			p.lines = append(p.lines, st)
		}
		p.store(uint32(i), ls)
	}
	p.valid = max(p.valid, target+1)
}

func (p *Provider) highlight(text string, start syntax.State, ls *lineSpans) syntax.State {
	p.highlighted++
	c := Collector{}
	end := p.highlighter.HighlightLine(text, start, &c)
	ls.spans = c.Spans
	ls.folds = c.Folds
	return end
}

func (p *Provider) store(line uint32, ls *lineSpans) {
	if _, ok := p.spans[line]; !ok && len(p.spans) >= p.maxCache {
		p.evictCache(line)
	}
	p.spans[line] = ls
}

// evictCache removes about a quarter of the cached spans, farthest from
// line first.
func (p *Provider) evictCache(line uint32) {
	toRemove := max(len(p.spans)/4, 1)

	lines := make([]uint32, 0, len(p.spans))
	for l := range p.spans {
		lines = append(lines, l)
	}
	dist := func(l uint32) uint32 {
		if l > line {
			return l - line
		}
		return line - l
	}
	slices.SortFunc(lines, func(a, b uint32) int {
		return cmp.Compare(dist(b), dist(a))
	})

	for _, l := range lines[:toRemove] {
		delete(p.spans, l)
	}
	p.logger.Debug("highlight cache evicted", zap.Int("lines", toRemove), zap.Uint32("near", line))
}

func (p *Provider) clearCache() {
	p.lines = nil
	p.valid = 0
	p.spans = make(map[uint32]*lineSpans)
}
