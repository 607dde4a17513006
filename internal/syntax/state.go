package syntax

import (
	"slices"

	"github.com/google/uuid"
)

// State is the context stack reached at the end of a line. It is the value
// a consumer stores per line and passes back to highlight the next one.
//
// The zero State is empty: highlighting starts in the initial context.
// States are immutable; two equal States produce identical results for
// identical input.
type State struct {
	d *stateData
}

type stateData struct {
	defID uuid.UUID
	stack []frame
}

type frame struct {
	context  *Context
	captures []string
}

// IsEmpty reports whether the State carries no context.
func (s State) IsEmpty() bool {
	return s.d == nil || len(s.d.stack) == 0
}

// Equal reports whether both States were built against the same loaded
// definition and have the same contexts and captures.
func (s State) Equal(other State) bool {
	if s.d == other.d {
		return true
	}
	if s.IsEmpty() || other.IsEmpty() {
		return s.IsEmpty() && other.IsEmpty()
	}
	if s.d.defID != other.d.defID || len(s.d.stack) != len(other.d.stack) {
		return false
	}
	for i := range s.d.stack {
		a, b := s.d.stack[i], other.d.stack[i]
		if a.context != b.context || !slices.Equal(a.captures, b.captures) {
			return false
		}
	}
	return true
}

// Depth returns the number of contexts on the stack.
func (s State) Depth() int {
	if s.d == nil {
		return 0
	}
	return len(s.d.stack)
}

// ContextNames returns the qualified context names, bottom first.
func (s State) ContextNames() []string {
	if s.IsEmpty() {
		return nil
	}
	names := make([]string, len(s.d.stack))
	for i, f := range s.d.stack {
		names[i] = f.context.QualifiedName()
	}
	return names
}

// IndentationBasedFoldingEnabled reports whether the line following this
// State folds by indentation.
func (s State) IndentationBasedFoldingEnabled() bool {
	if s.IsEmpty() {
		return false
	}
	return s.d.stack[len(s.d.stack)-1].context.indentationFolding
}

// stateWriter mutates a State on behalf of the highlighter. The input State
// is shared with the caller and is cloned before the first modification.
type stateWriter struct {
	d      *stateData
	shared bool
}

// newStateWriter starts from s, or from the initial context of data when s
// is empty or was built against another instance of the definition.
func newStateWriter(s State, data *definitionData) *stateWriter {
	if s.IsEmpty() || s.d.defID != data.id {
		return &stateWriter{d: &stateData{
			defID: data.id,
			stack: []frame{{context: data.initialContext()}},
		}}
	}
	return &stateWriter{d: s.d, shared: true}
}

func (w *stateWriter) detach() {
	if !w.shared {
		return
	}
	w.d = &stateData{defID: w.d.defID, stack: slices.Clone(w.d.stack)}
	w.shared = false
}

func (w *stateWriter) state() State {
	return State{d: w.d}
}

func (w *stateWriter) top() frame {
	return w.d.stack[len(w.d.stack)-1]
}

// pop removes up to n contexts, always keeping the initial one. It reports
// whether the request was satisfied without touching the initial context.
func (w *stateWriter) pop(n int) bool {
	if n <= 0 {
		return true
	}
	size := len(w.d.stack)
	survived := size > n
	keep := max(size-n, 1)
	if keep != size {
		w.detach()
		w.d.stack = w.d.stack[:keep]
	}
	return survived
}

func (w *stateWriter) push(ctx *Context, captures []string) {
	w.detach()
	if !ctx.keepsCaptures() {
		captures = nil
	}
	w.d.stack = append(w.d.stack, frame{context: ctx, captures: captures})
}

// switchContext applies sw. A switch with a target always succeeds; a
// pop-only switch fails when it reached the initial context.
func (w *stateWriter) switchContext(sw ContextSwitch, captures []string) bool {
	if sw.IsStay() {
		return true
	}
	survived := w.pop(sw.popCount)
	if sw.context != nil {
		w.push(sw.context, captures)
		return true
	}
	return survived
}
