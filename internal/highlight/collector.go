package highlight

import "github.com/dshills/ksyntax/internal/syntax"

// Span is a formatted range of a line, in code points.
type Span struct {
	Offset int
	Length int
	Format syntax.Format
}

// End returns the offset just past the span.
func (s Span) End() int {
	return s.Offset + s.Length
}

// Fold is a folding marker reported for a line.
type Fold struct {
	Offset int
	Length int
	Region syntax.FoldingRegion
}

// Collector is a syntax.Sink that records every event of a line.
type Collector struct {
	Spans []Span
	Folds []Fold
}

// ApplyFormat implements syntax.Sink.
func (c *Collector) ApplyFormat(offset, length int, f syntax.Format) {
	c.Spans = append(c.Spans, Span{Offset: offset, Length: length, Format: f})
}

// ApplyFolding implements syntax.Sink.
func (c *Collector) ApplyFolding(offset, length int, region syntax.FoldingRegion) {
	c.Folds = append(c.Folds, Fold{Offset: offset, Length: length, Region: region})
}

// Reset drops the recorded events and keeps the buffers.
func (c *Collector) Reset() {
	c.Spans = c.Spans[:0]
	c.Folds = c.Folds[:0]
}

// Merge joins adjacent spans with the same format and drops empty ones.
func Merge(spans []Span) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Length == 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].End() == s.Offset && out[n-1].Format.ID() == s.Format.ID() {
			out[n-1].Length += s.Length
			continue
		}
		out = append(out, s)
	}
	return out
}
