package syntax

import (
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// KeywordList is a named set of words tested by the keyword rule.
//
// Lookup is a binary search over a sorted projection of the words. The
// case-sensitive and the case-insensitive projections are each built on
// first use, since most grammars only ever need one of them.
type KeywordList struct {
	name          string
	keywords      []string
	includes      []string
	caseSensitive bool
	def           *definitionData

	sensitiveOnce   sync.Once
	sensitive       []string
	insensitiveOnce sync.Once
	insensitive     []string
}

func newKeywordList(name string, items, includes []string, caseSensitive bool) *KeywordList {
	keywords := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			keywords = append(keywords, item)
		}
	}
	return &KeywordList{
		name:          name,
		keywords:      keywords,
		includes:      slices.Clone(includes),
		caseSensitive: caseSensitive,
	}
}

// Name returns the list name.
func (k *KeywordList) Name() string {
	return k.name
}

// Keywords returns the words of the list, including resolved includes.
func (k *KeywordList) Keywords() []string {
	return slices.Clone(k.keywords)
}

// IsEmpty reports whether the list has no words.
func (k *KeywordList) IsEmpty() bool {
	return len(k.keywords) == 0
}

// CaseSensitive returns the default case sensitivity of the grammar that
// declared the list.
func (k *KeywordList) CaseSensitive() bool {
	return k.caseSensitive
}

// Contains reports whether word is in the list.
func (k *KeywordList) Contains(word string, caseSensitive bool) bool {
	if caseSensitive {
		k.sensitiveOnce.Do(func() {
			k.sensitive = sortedUnique(slices.Clone(k.keywords))
		})
		_, found := slices.BinarySearch(k.sensitive, word)
		return found
	}

	k.insensitiveOnce.Do(func() {
		folded := make([]string, len(k.keywords))
		for i, kw := range k.keywords {
			folded[i] = foldCase(kw)
		}
		k.insensitive = sortedUnique(folded)
	})
	_, found := slices.BinarySearch(k.insensitive, foldCase(word))
	return found
}

// resolveIncludes appends the words of every included list. An include is
// removed before it is followed, so mutually including lists terminate.
// find resolves a reference relative to the list that names it.
func (k *KeywordList) resolveIncludes(find func(from *KeywordList, ref string) *KeywordList, missing func(from *KeywordList, ref string)) {
	for len(k.includes) > 0 {
		ref := k.includes[len(k.includes)-1]
		k.includes = k.includes[:len(k.includes)-1]

		other := find(k, ref)
		if other == nil {
			missing(k, ref)
			continue
		}
		if other != k {
			other.resolveIncludes(find, missing)
		}
		k.keywords = append(k.keywords, other.keywords...)
	}
}

func sortedUnique(words []string) []string {
	slices.Sort(words)
	return slices.Compact(words)
}

// foldCase maps s to its case-folded form. ASCII input takes a fast path;
// anything else uses full Unicode case folding.
func foldCase(s string) string {
	ascii := true
	upper := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= utf8.RuneSelf {
			ascii = false
			break
		}
		if 'A' <= c && c <= 'Z' {
			upper = true
		}
	}
	if ascii {
		if !upper {
			return s
		}
		return strings.ToLower(s)
	}
	return cases.Fold().String(s)
}
