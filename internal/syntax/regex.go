package syntax

import (
	"strings"
	"sync"

	"github.com/dlclark/regexp2"
)

// maxDynamicPatterns bounds the per-rule cache of compiled dynamic patterns.
const maxDynamicPatterns = 256

// regexRule holds the compiled pattern of a RegExpr rule. Dynamic rules
// compile one pattern per distinct capture substitution, memoized.
type regexRule struct {
	pattern string
	options regexp2.RegexOptions
	minimal bool

	static *regexp2.Regexp

	mu      sync.Mutex
	dynamic map[string]*regexp2.Regexp
}

func newRegexRule(pattern string, insensitive, minimal, dynamic bool) (*regexRule, error) {
	rr := &regexRule{pattern: pattern, minimal: minimal}
	if insensitive {
		rr.options |= regexp2.IgnoreCase
	}

	if dynamic {
		// validate with every placeholder replaced by a plain literal
		placeholders := make([]string, 10)
		for i := range placeholders {
			placeholders[i] = "_"
		}
		if _, err := rr.compile(substituteCaptures(pattern, placeholders, true)); err != nil {
			return nil, err
		}
		rr.dynamic = make(map[string]*regexp2.Regexp)
		return rr, nil
	}

	re, err := rr.compile(pattern)
	if err != nil {
		return nil, err
	}
	rr.static = re
	return rr, nil
}

func (rr *regexRule) compile(pattern string) (*regexp2.Regexp, error) {
	if rr.minimal {
		pattern = invertGreediness(pattern)
	}
	return regexp2.Compile(pattern, rr.options)
}

func (rr *regexRule) forCaptures(captures []string) *regexp2.Regexp {
	pattern := substituteCaptures(rr.pattern, captures, true)

	rr.mu.Lock()
	defer rr.mu.Unlock()
	if re, ok := rr.dynamic[pattern]; ok {
		return re
	}
	re, err := rr.compile(pattern)
	if err != nil {
		return nil
	}
	if len(rr.dynamic) >= maxDynamicPatterns {
		clear(rr.dynamic)
	}
	rr.dynamic[pattern] = re
	return re
}

// match searches from offset to the end of the line. A match starting
// later than offset is reported through SkipOffset so the rule is not
// re-run before it; no match at all skips the rest of the line.
func (rr *regexRule) match(text []rune, offset int, captures []string, dynamic bool) MatchResult {
	re := rr.static
	if dynamic {
		re = rr.forCaptures(captures)
	}
	if re == nil {
		return MatchResult{NewOffset: offset, SkipOffset: len(text)}
	}

	m, err := re.FindRunesMatchStartingAt(text, offset)
	if err != nil || m == nil {
		return MatchResult{NewOffset: offset, SkipOffset: len(text)}
	}
	if m.Index != offset {
		return MatchResult{NewOffset: offset, SkipOffset: m.Index}
	}
	if m.Length == 0 {
		return MatchResult{NewOffset: offset}
	}

	groups := m.Groups()
	texts := make([]string, len(groups))
	for i := range groups {
		texts[i] = groups[i].String()
	}
	return MatchResult{NewOffset: offset + m.Length, Captures: texts}
}

// substituteCaptures replaces %1..%9 with the corresponding capture. A
// reference past the captured groups becomes the empty string. With quote
// set the capture is escaped for use inside a regular expression.
func substituteCaptures(pattern string, captures []string, quote bool) string {
	if !strings.Contains(pattern, "%") {
		return pattern
	}

	var b strings.Builder
	b.Grow(len(pattern))
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '%' || i+1 >= len(pattern) || pattern[i+1] < '1' || pattern[i+1] > '9' {
			b.WriteByte(c)
			continue
		}
		idx := int(pattern[i+1] - '0')
		i++
		if idx >= len(captures) {
			continue
		}
		if quote {
			b.WriteString(regexp2.Escape(captures[idx]))
		} else {
			b.WriteString(captures[idx])
		}
	}
	return b.String()
}

// invertGreediness turns greedy quantifiers lazy and lazy ones greedy,
// which is how a "minimal" pattern is evaluated.
func invertGreediness(pattern string) string {
	rs := []rune(pattern)
	var b strings.Builder
	b.Grow(len(pattern) + 8)

	inClass := false
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch {
		case c == '\\':
			b.WriteRune(c)
			if i+1 < len(rs) {
				i++
				b.WriteRune(rs[i])
			}
			continue
		case inClass:
			b.WriteRune(c)
			if c == ']' {
				inClass = false
			}
			continue
		case c == '[':
			inClass = true
			b.WriteRune(c)
			if i+1 < len(rs) && rs[i+1] == '^' {
				i++
				b.WriteRune('^')
			}
			// a leading ']' is a literal member of the class
			if i+1 < len(rs) && rs[i+1] == ']' {
				i++
				b.WriteRune(']')
			}
			continue
		case c == '(':
			b.WriteRune(c)
			// group modifiers such as (?: and (?= are not quantifiers
			if i+1 < len(rs) && rs[i+1] == '?' {
				i++
				b.WriteRune('?')
			}
			continue
		case c == '*' || c == '+' || c == '?':
			b.WriteRune(c)
		case c == '{':
			end := boundedQuantifierEnd(rs, i)
			if end < 0 {
				b.WriteRune(c)
				continue
			}
			b.WriteString(string(rs[i : end+1]))
			i = end
		default:
			b.WriteRune(c)
			continue
		}

		if i+1 < len(rs) && rs[i+1] == '?' {
			i++
		} else {
			b.WriteRune('?')
		}
	}
	return b.String()
}

// boundedQuantifierEnd returns the index of the '}' closing a {n}, {n,} or
// {n,m} quantifier that starts at start, or -1.
func boundedQuantifierEnd(rs []rune, start int) int {
	i := start + 1
	digits := 0
	for i < len(rs) && rs[i] >= '0' && rs[i] <= '9' {
		i++
		digits++
	}
	if digits == 0 || i >= len(rs) {
		return -1
	}
	if rs[i] == ',' {
		i++
		for i < len(rs) && rs[i] >= '0' && rs[i] <= '9' {
			i++
		}
	}
	if i < len(rs) && rs[i] == '}' {
		return i
	}
	return -1
}
