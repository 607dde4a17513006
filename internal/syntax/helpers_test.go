package syntax

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/ksyntax/internal/grammar"
)

// event is one Sink call in a comparable form.
type event struct {
	Kind   string // "format" or "fold"
	Offset int
	Length int
	Value  string
}

type recorder struct {
	events []event
}

func (r *recorder) ApplyFormat(offset, length int, f Format) {
	r.events = append(r.events, event{Kind: "format", Offset: offset, Length: length, Value: f.Name()})
}

func (r *recorder) ApplyFolding(offset, length int, region FoldingRegion) {
	r.events = append(r.events, event{Kind: "fold", Offset: offset, Length: length, Value: region.String()})
}

func (r *recorder) formats() []event {
	var out []event
	for _, e := range r.events {
		if e.Kind == "format" {
			out = append(out, e)
		}
	}
	return out
}

func format(offset, length int, name string) event {
	return event{Kind: "format", Offset: offset, Length: length, Value: name}
}

func fold(offset, length int, value string) event {
	return event{Kind: "fold", Offset: offset, Length: length, Value: value}
}

func newTestRepository(t *testing.T, docs ...string) *Repository {
	t.Helper()

	src := grammar.NewMapSource()
	for _, doc := range docs {
		g, err := grammar.Decode(grammar.EncodingYAML, []byte(doc))
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		src.Add(g)
	}
	repo, err := NewRepository(src)
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	return repo
}

func mustDefinition(t *testing.T, repo *Repository, name string) *Definition {
	t.Helper()
	def := repo.DefinitionForName(name)
	if def == nil {
		t.Fatalf("DefinitionForName(%q) = nil", name)
	}
	return def
}

// highlightLines highlights lines in sequence and returns the events per
// line and the final State.
func highlightLines(h *Highlighter, state State, lines ...string) ([][]event, State) {
	out := make([][]event, len(lines))
	for i, line := range lines {
		rec := &recorder{}
		state = h.HighlightLine(line, state, rec)
		out[i] = rec.events
	}
	return out, state
}

// checkTiling verifies the format events cover [0, n) without gaps.
func checkTiling(t *testing.T, line string, events []event) {
	t.Helper()

	n := len([]rune(line))
	pos := 0
	count := 0
	for _, e := range events {
		if e.Kind != "format" {
			continue
		}
		count++
		if e.Offset != pos {
			t.Fatalf("line %q: format at %d, want %d (events %v)", line, e.Offset, pos, events)
		}
		pos += e.Length
	}
	if n == 0 {
		if count != 1 {
			t.Fatalf("empty line: %d format events, want 1", count)
		}
		return
	}
	if pos != n {
		t.Fatalf("line %q: formats end at %d, want %d (events %v)", line, pos, n, events)
	}
}

func diffEvents(t *testing.T, got, want []event) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func hasWarning(warnings []Warning, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w.Message, substr) {
			return true
		}
	}
	return false
}
