package highlight

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/ksyntax/internal/grammar"
	"github.com/dshills/ksyntax/internal/syntax"
	"github.com/dshills/ksyntax/internal/theme"
)

const blocksYAML = `
name: Blocks
contexts:
  - name: Normal
    attribute: Normal Text
    rules:
      - kind: Detect2Chars
        char: "/"
        char1: "*"
        attribute: Comment
        context: Block
        beginRegion: comment
  - name: Block
    attribute: Comment
    rules:
      - kind: Detect2Chars
        char: "*"
        char1: "/"
        attribute: Comment
        context: "#pop"
        endRegion: comment
formats:
  - name: Normal Text
  - name: Comment
    style: dsComment
`

// document is an editable list of lines.
type document struct {
	mu    sync.Mutex
	lines []string
}

func (d *document) line(n uint32) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(n) < len(d.lines) {
		return d.lines[n]
	}
	return ""
}

func (d *document) set(n int, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lines[n] = text
}

func newTestHighlighter(t *testing.T) *syntax.Highlighter {
	t.Helper()
	g, err := grammar.Decode(grammar.EncodingYAML, []byte(blocksYAML))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	repo, err := syntax.NewRepository(grammar.NewMapSource(g))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	def := repo.DefinitionForName("Blocks")
	if def == nil {
		t.Fatal("DefinitionForName(Blocks) = nil")
	}
	return syntax.NewHighlighter(def)
}

func newTestProvider(t *testing.T, opts ...Option) (*Provider, *document) {
	t.Helper()
	doc := &document{lines: []string{"a", "/* b", "c", "d */ e", "f", "g"}}
	return NewProvider(newTestHighlighter(t), doc.line, opts...), doc
}

func describe(spans []Span) []string {
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = fmt.Sprintf("%d+%d %s", s.Offset, s.Length, s.Format.Name())
	}
	return out
}

func TestProviderSpans(t *testing.T) {
	p, _ := newTestProvider(t)

	if diff := cmp.Diff([]string{"0+1 Comment"}, describe(p.Spans(2))); diff != "" {
		t.Errorf("Spans(2) mismatch (-want +got):\n%s", diff)
	}
	if p.highlighted != 3 {
		t.Errorf("highlighted = %d, want 3", p.highlighted)
	}

	if got := p.State(1).Depth(); got != 2 {
		t.Errorf("State(1).Depth() = %d, want 2", got)
	}
	if got := p.State(3).Depth(); got != 1 {
		t.Errorf("State(3).Depth() = %d, want 1", got)
	}

	folds := p.Folds(1)
	if len(folds) != 1 || folds[0].Region.Type() != syntax.FoldingRegionBegin || folds[0].Offset != 0 {
		t.Errorf("Folds(1) = %v, want one begin marker at 0", folds)
	}
	if folds := p.Folds(3); len(folds) != 1 || folds[0].Region != p.Folds(1)[0].Region.Sibling() {
		t.Errorf("Folds(3) = %v, want the matching end marker", folds)
	}

	// lines 0..3 are cached, Folds and State did not highlight again
	if p.highlighted != 4 {
		t.Errorf("highlighted = %d, want 4", p.highlighted)
	}
}

func TestProviderInvalidateConverges(t *testing.T) {
	p, doc := newTestProvider(t)
	p.Spans(5)
	if p.highlighted != 6 {
		t.Fatalf("highlighted = %d, want 6", p.highlighted)
	}

	t.Run("state unchanged", func(t *testing.T) {
		doc.set(4, "ff")
		p.InvalidateLines(4, 4)
		p.Spans(5)
		if p.highlighted != 7 {
			t.Errorf("highlighted = %d, want 7", p.highlighted)
		}
		if diff := cmp.Diff([]string{"0+2 Normal Text"}, describe(p.Spans(4))); diff != "" {
			t.Errorf("Spans(4) mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("state change propagates", func(t *testing.T) {
		doc.set(1, "b")
		p.InvalidateLines(1, 1)
		p.Spans(5)
		// lines 1 to 3 change state, line 4 starts from an equal state again
		if p.highlighted != 10 {
			t.Errorf("highlighted = %d, want 10", p.highlighted)
		}
		if diff := cmp.Diff([]string{"0+1 Normal Text"}, describe(p.Spans(2))); diff != "" {
			t.Errorf("Spans(2) mismatch (-want +got):\n%s", diff)
		}
		if len(p.Folds(1)) != 0 {
			t.Errorf("Folds(1) = %v, want none", p.Folds(1))
		}
	})

	t.Run("lines removed", func(t *testing.T) {
		doc.mu.Lock()
		doc.lines = append(doc.lines[:2], doc.lines[3:]...)
		doc.mu.Unlock()
		p.InvalidateLines(2, math.MaxUint32)

		before := p.highlighted
		if diff := cmp.Diff([]string{"0+6 Normal Text"}, describe(p.Spans(2))); diff != "" {
			t.Errorf("Spans(2) mismatch (-want +got):\n%s", diff)
		}
		if p.highlighted != before+1 {
			t.Errorf("highlighted %d lines, want 1", p.highlighted-before)
		}
	})
}

func TestProviderEviction(t *testing.T) {
	p, _ := newTestProvider(t, WithMaxCache(2))
	first := describe(p.Spans(0))
	p.Spans(1)
	p.Spans(2)

	if len(p.spans) != 2 {
		t.Errorf("cached %d lines, want 2", len(p.spans))
	}
	if _, ok := p.spans[0]; ok {
		t.Error("line 0 should have been evicted")
	}

	before := p.highlighted
	if diff := cmp.Diff(first, describe(p.Spans(0))); diff != "" {
		t.Errorf("Spans(0) after eviction mismatch (-want +got):\n%s", diff)
	}
	if p.highlighted != before+1 {
		t.Errorf("highlighted %d lines, want 1", p.highlighted-before)
	}
}

func TestProviderReturnsCopies(t *testing.T) {
	p, _ := newTestProvider(t)

	spans := p.Spans(1)
	spans[0].Length = 99
	folds := p.Folds(1)
	folds[0].Offset = 7

	if got := p.Spans(1)[0].Length; got != 4 {
		t.Errorf("Spans(1)[0].Length = %d, want 4", got)
	}
	if got := p.Folds(1)[0].Offset; got != 0 {
		t.Errorf("Folds(1)[0].Offset = %d, want 0", got)
	}
}

func TestProviderStyles(t *testing.T) {
	th := theme.DefaultTheme()
	p, doc := newTestProvider(t, WithTheme(th))
	doc.set(0, "")

	if got := p.Styles(0); len(got) != 0 {
		t.Errorf("Styles(0) = %v, want none for an empty line", got)
	}

	want := []StyledSpan{
		{Offset: 0, Length: 4, Style: th.TextStyles[syntax.TextStyleComment]},
	}
	if diff := cmp.Diff(want, p.Styles(1)); diff != "" {
		t.Errorf("Styles(1) mismatch (-want +got):\n%s", diff)
	}
	if p.Theme() != th {
		t.Error("Theme() should return the configured theme")
	}
}

func TestProviderNotReady(t *testing.T) {
	p := NewProvider(nil, nil)
	if p.Spans(0) != nil || p.Folds(0) != nil || p.Styles(0) != nil {
		t.Error("a provider without highlighter should return nothing")
	}
	if !p.State(0).IsEmpty() {
		t.Error("State(0) should be empty")
	}

	doc := &document{lines: []string{"/* x"}}
	p.SetLineGetter(doc.line)
	p.SetHighlighter(newTestHighlighter(t))
	if p.State(0).Depth() != 2 {
		t.Errorf("State(0).Depth() = %d, want 2", p.State(0).Depth())
	}
}

func TestProviderConcurrentAccess(t *testing.T) {
	p, doc := newTestProvider(t)
	ref := NewProvider(p.highlighter, doc.line)

	want := make([][]string, len(doc.lines))
	for i := range doc.lines {
		want[i] = describe(ref.Spans(uint32(i)))
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := len(doc.lines) - 1; i >= 0; i-- {
				line := (i + g) % len(doc.lines)
				if diff := cmp.Diff(want[line], describe(p.Spans(uint32(line)))); diff != "" {
					t.Errorf("Spans(%d) mismatch (-want +got):\n%s", line, diff)
				}
				if g%4 == 0 {
					p.InvalidateLines(uint32(line), uint32(line))
				}
			}
		}(g)
	}
	wg.Wait()
}

func TestMerge(t *testing.T) {
	p, _ := newTestProvider(t)
	comment := p.Spans(2)[0].Format
	normal := p.Spans(0)[0].Format

	in := []Span{
		{Offset: 0, Length: 0, Format: normal},
		{Offset: 0, Length: 2, Format: comment},
		{Offset: 2, Length: 3, Format: comment},
		{Offset: 5, Length: 1, Format: normal},
		{Offset: 7, Length: 1, Format: normal},
	}
	want := []string{"0+5 Comment", "5+1 Normal Text", "7+1 Normal Text"}
	if diff := cmp.Diff(want, describe(Merge(in))); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectorReset(t *testing.T) {
	c := &Collector{}
	h := newTestHighlighter(t)
	h.HighlightLine("/* x */", syntax.State{}, c)
	if len(c.Spans) == 0 || len(c.Folds) != 2 {
		t.Fatalf("Collector recorded %d spans, %d folds", len(c.Spans), len(c.Folds))
	}
	c.Reset()
	if len(c.Spans) != 0 || len(c.Folds) != 0 {
		t.Error("Reset() should drop the events")
	}
}
