package syntax

import (
	"slices"
	"unicode"
)

// defaultWordDelimiters separate words for keyword, WordDetect and the
// numeric rules.
const defaultWordDelimiters = "\t !%&()*+,-./:;<=>?[\\]^{|}~"

// wordDelimiters is a small set of runes with an ASCII table fast path.
// Non-ASCII white space counts as a delimiter unless removed explicitly.
type wordDelimiters struct {
	ascii   [128]bool
	extra   []rune
	removed []rune
}

func newWordDelimiters() *wordDelimiters {
	w := &wordDelimiters{}
	w.add(defaultWordDelimiters)
	return w
}

func (w *wordDelimiters) clone() *wordDelimiters {
	c := *w
	c.extra = slices.Clone(w.extra)
	c.removed = slices.Clone(w.removed)
	return &c
}

func (w *wordDelimiters) add(chars string) {
	for _, r := range chars {
		if r < 128 {
			w.ascii[r] = true
			continue
		}
		w.removed = slices.DeleteFunc(w.removed, func(x rune) bool { return x == r })
		if !slices.Contains(w.extra, r) {
			w.extra = append(w.extra, r)
		}
	}
}

func (w *wordDelimiters) remove(chars string) {
	for _, r := range chars {
		if r < 128 {
			w.ascii[r] = false
			continue
		}
		w.extra = slices.DeleteFunc(w.extra, func(x rune) bool { return x == r })
		if !slices.Contains(w.removed, r) {
			w.removed = append(w.removed, r)
		}
	}
}

func (w *wordDelimiters) contains(r rune) bool {
	if r >= 0 && r < 128 {
		return w.ascii[r]
	}
	if slices.Contains(w.extra, r) {
		return true
	}
	return unicode.IsSpace(r) && !slices.Contains(w.removed, r)
}
