package syntax

import "fmt"

// Warning is a problem found while loading a definition. The offending
// element was dropped or degraded; loading continued.
type Warning struct {
	Definition string
	Context    string
	// Rule is the index of the rule within its context, or -1.
	Rule    int
	Message string
}

// String formats the warning as "Definition/Context#Rule: message".
func (w Warning) String() string {
	loc := w.Definition
	if w.Context != "" {
		loc += "/" + w.Context
	}
	if w.Rule >= 0 {
		loc += fmt.Sprintf("#%d", w.Rule)
	}
	return loc + ": " + w.Message
}
