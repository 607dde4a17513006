package syntax

import (
	"slices"
	"unicode"
	"unicode/utf8"
)

func (r *Rule) match(text []rune, offset int, captures []string) MatchResult {
	switch r.kind {
	case RuleAnyChar:
		if slices.Contains(r.chars, text[offset]) {
			return matched(offset + 1)
		}
	case RuleDetectChar:
		return r.matchDetectChar(text, offset, captures)
	case RuleDetect2Chars:
		if len(text)-offset >= 2 && text[offset] == r.chars[0] && text[offset+1] == r.chars[1] {
			return matched(offset + 2)
		}
	case RuleDetectIdentifier:
		return matchIdentifier(text, offset)
	case RuleDetectSpaces:
		end := offset
		for end < len(text) && unicode.IsSpace(text[end]) {
			end++
		}
		return matched(end)
	case RuleFloat:
		return r.matchFloat(text, offset)
	case RuleHlCChar:
		return matchCChar(text, offset)
	case RuleHlCHex:
		return r.matchHex(text, offset)
	case RuleHlCOct:
		return r.matchOct(text, offset)
	case RuleHlCStringChar:
		return matched(matchEscapedChar(text, offset))
	case RuleInt:
		if !r.atWordStart(text, offset) {
			break
		}
		end := offset
		for end < len(text) && unicode.IsDigit(text[end]) {
			end++
		}
		return matched(end)
	case RuleKeyword:
		return r.matchKeyword(text, offset)
	case RuleLineContinue:
		if offset == len(text)-1 && text[offset] == r.chars[0] {
			return matched(offset + 1)
		}
	case RuleRangeDetect:
		return r.matchRange(text, offset)
	case RuleRegExpr:
		return r.regex.match(text, offset, captures, r.dynamic)
	case RuleStringDetect:
		return r.matchString(text, offset, captures)
	case RuleWordDetect:
		return r.matchWord(text, offset)
	}
	// IncludeRules is inlined during resolution and never matches itself.
	return MatchResult{NewOffset: offset}
}

func matched(offset int) MatchResult {
	return MatchResult{NewOffset: offset}
}

// atWordStart reports whether offset is at line start or follows a delimiter.
func (r *Rule) atWordStart(text []rune, offset int) bool {
	return offset == 0 || r.delimiters.contains(text[offset-1])
}

func (r *Rule) matchDetectChar(text []rune, offset int, captures []string) MatchResult {
	if r.dynamic {
		if r.captureIndex <= 0 || r.captureIndex >= len(captures) || captures[r.captureIndex] == "" {
			return MatchResult{NewOffset: offset}
		}
		if c, _ := utf8.DecodeRuneInString(captures[r.captureIndex]); text[offset] == c {
			return matched(offset + 1)
		}
		return MatchResult{NewOffset: offset}
	}
	if text[offset] == r.chars[0] {
		return matched(offset + 1)
	}
	return MatchResult{NewOffset: offset}
}

func matchIdentifier(text []rune, offset int) MatchResult {
	if c := text[offset]; !unicode.IsLetter(c) && c != '_' {
		return MatchResult{NewOffset: offset}
	}
	for i := offset + 1; i < len(text); i++ {
		c := text[i]
		if !unicode.IsLetter(c) && !unicode.IsNumber(c) && c != '_' {
			return matched(i)
		}
	}
	return matched(len(text))
}

func (r *Rule) matchFloat(text []rune, offset int) MatchResult {
	if !r.atWordStart(text, offset) {
		return MatchResult{NewOffset: offset}
	}

	end := offset
	for end < len(text) && unicode.IsDigit(text[end]) {
		end++
	}
	if end >= len(text) || text[end] != '.' {
		return MatchResult{NewOffset: offset}
	}
	end++
	for end < len(text) && unicode.IsDigit(text[end]) {
		end++
	}
	// a lone decimal point
	if end == offset+1 {
		return MatchResult{NewOffset: offset}
	}

	exp := end
	if exp >= len(text) || (text[exp] != 'e' && text[exp] != 'E') {
		return matched(end)
	}
	exp++
	if exp < len(text) && (text[exp] == '+' || text[exp] == '-') {
		exp++
	}
	digits := false
	for exp < len(text) && unicode.IsDigit(text[exp]) {
		exp++
		digits = true
	}
	if !digits {
		return matched(end)
	}
	return matched(exp)
}

func isOctalDigit(c rune) bool {
	return c >= '0' && c <= '7'
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// matchEscapedChar consumes one C escape sequence at offset.
func matchEscapedChar(text []rune, offset int) int {
	if text[offset] != '\\' || len(text) < offset+2 {
		return offset
	}

	switch c := text[offset+1]; c {
	case 'a', 'b', 'e', 'f', 'n', 'r', 't', 'v', '"', '\'', '?', '\\':
		return offset + 2
	case 'x':
		if offset+2 < len(text) && isHexDigit(text[offset+2]) {
			if offset+3 < len(text) && isHexDigit(text[offset+3]) {
				return offset + 4
			}
			return offset + 3
		}
		return offset
	case '0', '1', '2', '3', '4', '5', '6', '7':
		if offset+2 < len(text) && isOctalDigit(text[offset+2]) {
			if offset+3 < len(text) && isOctalDigit(text[offset+3]) {
				return offset + 4
			}
			return offset + 3
		}
		return offset + 2
	}
	return offset
}

func matchCChar(text []rune, offset int) MatchResult {
	if len(text) < offset+3 {
		return MatchResult{NewOffset: offset}
	}
	if text[offset] != '\'' || text[offset+1] == '\'' {
		return MatchResult{NewOffset: offset}
	}

	end := matchEscapedChar(text, offset+1)
	if end == offset+1 {
		if text[end] == '\\' {
			return MatchResult{NewOffset: offset}
		}
		end++
	}
	if end >= len(text) || text[end] != '\'' {
		return MatchResult{NewOffset: offset}
	}
	return matched(end + 1)
}

func (r *Rule) matchHex(text []rune, offset int) MatchResult {
	if !r.atWordStart(text, offset) || len(text) < offset+3 {
		return MatchResult{NewOffset: offset}
	}
	if text[offset] != '0' || (text[offset+1] != 'x' && text[offset+1] != 'X') || !isHexDigit(text[offset+2]) {
		return MatchResult{NewOffset: offset}
	}
	end := offset + 3
	for end < len(text) && isHexDigit(text[end]) {
		end++
	}
	return matched(end)
}

func (r *Rule) matchOct(text []rune, offset int) MatchResult {
	if !r.atWordStart(text, offset) || len(text) < offset+2 {
		return MatchResult{NewOffset: offset}
	}
	if text[offset] != '0' || !isOctalDigit(text[offset+1]) {
		return MatchResult{NewOffset: offset}
	}
	end := offset + 2
	for end < len(text) && isOctalDigit(text[end]) {
		end++
	}
	return matched(end)
}

func (r *Rule) matchKeyword(text []rune, offset int) MatchResult {
	end := offset
	for end < len(text) && !r.delimiters.contains(text[end]) {
		end++
	}
	if end == offset {
		return MatchResult{NewOffset: offset}
	}
	if r.keywords.Contains(string(text[offset:end]), !r.insensitive) {
		return matched(end)
	}
	// no keyword can start inside the consumed run
	return MatchResult{NewOffset: offset, SkipOffset: end}
}

func (r *Rule) matchRange(text []rune, offset int) MatchResult {
	if len(text)-offset < 2 || text[offset] != r.chars[0] {
		return MatchResult{NewOffset: offset}
	}
	for i := offset + 1; i < len(text); i++ {
		if text[i] == r.chars[1] {
			return matched(i + 1)
		}
	}
	return MatchResult{NewOffset: offset}
}

func (r *Rule) matchString(text []rune, offset int, captures []string) MatchResult {
	pattern := r.text
	if r.dynamic {
		pattern = []rune(substituteCaptures(r.pattern, captures, false))
	}
	if len(pattern) == 0 || len(text)-offset < len(pattern) {
		return MatchResult{NewOffset: offset}
	}
	if runesEqual(text[offset:offset+len(pattern)], pattern, r.insensitive) {
		return matched(offset + len(pattern))
	}
	return MatchResult{NewOffset: offset}
}

// matchWord requires a word boundary on both sides: before the word either
// the line start or a delimiter on one side of the boundary, and likewise
// after it.
func (r *Rule) matchWord(text []rune, offset int) MatchResult {
	n := len(r.text)
	if len(text)-offset < n {
		return MatchResult{NewOffset: offset}
	}
	if offset > 0 && !r.delimiters.contains(text[offset-1]) && !r.delimiters.contains(text[offset]) {
		return MatchResult{NewOffset: offset}
	}
	if !runesEqual(text[offset:offset+n], r.text, r.insensitive) {
		return MatchResult{NewOffset: offset}
	}
	end := offset + n
	if end == len(text) || r.delimiters.contains(text[end]) || r.delimiters.contains(text[end-1]) {
		return matched(end)
	}
	return MatchResult{NewOffset: offset}
}

func runesEqual(a, b []rune, insensitive bool) bool {
	if !insensitive {
		return slices.Equal(a, b)
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalFoldRune(a[i], b[i]) {
			return false
		}
	}
	return true
}

// equalFoldRune reports whether a and b are equal under simple case folding.
func equalFoldRune(a, b rune) bool {
	if a == b {
		return true
	}
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}
