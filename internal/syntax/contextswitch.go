package syntax

import "strings"

// ContextSwitch is a resolved context transition: pop PopCount contexts,
// then push Context if it is not nil.
type ContextSwitch struct {
	popCount int
	context  *Context

	// target names, kept until resolution
	contextName    string
	definitionName string
}

// parseContextSwitch splits a textual directive into pop count and target
// names. Any number of leading "#pop" is accepted; "#pop!Name" pops once
// more and then names the target.
func parseContextSwitch(instr string) ContextSwitch {
	var sw ContextSwitch
	instr = strings.TrimSpace(instr)
	for {
		switch {
		case instr == "" || instr == "#stay":
			return sw
		case strings.HasPrefix(instr, "#pop!"):
			sw.popCount++
			sw.setTarget(instr[len("#pop!"):])
			return sw
		case strings.HasPrefix(instr, "#pop"):
			sw.popCount++
			instr = instr[len("#pop"):]
		default:
			sw.setTarget(instr)
			return sw
		}
	}
}

func (s *ContextSwitch) setTarget(target string) {
	if idx := strings.Index(target, "##"); idx >= 0 {
		s.contextName = target[:idx]
		s.definitionName = target[idx+2:]
		return
	}
	s.contextName = target
}

// hasTarget reports whether the directive names a context or grammar.
func (s ContextSwitch) hasTarget() bool {
	return s.contextName != "" || s.definitionName != ""
}

// IsStay reports whether the switch leaves the stack unchanged.
func (s ContextSwitch) IsStay() bool {
	return s.popCount == 0 && s.context == nil
}

// PopCount returns how many contexts are popped.
func (s ContextSwitch) PopCount() int {
	return s.popCount
}

// Context returns the context pushed after popping, or nil.
func (s ContextSwitch) Context() *Context {
	return s.context
}

// String renders the switch in directive form.
func (s ContextSwitch) String() string {
	if s.IsStay() {
		return "#stay"
	}
	var b strings.Builder
	for i := 0; i < s.popCount; i++ {
		b.WriteString("#pop")
	}
	if s.context != nil {
		if s.popCount > 0 {
			b.WriteByte('!')
		}
		b.WriteString(s.context.QualifiedName())
	}
	return b.String()
}
