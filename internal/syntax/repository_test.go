package syntax

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dshills/ksyntax/internal/grammar"
)

const (
	goYAML = `
name: Go
section: Sources
extensions: ["*.go"]
mimetypes: [text/x-go]
alternativeNames: [golang]
contexts:
  - name: Normal
`
	templateYAML = `
name: Go Template
section: Markup
priority: 5
extensions: ["*.go", "*.tmpl"]
contexts:
  - name: Normal
`
	awkYAML = `
name: AWK
section: Scripts
extensions: ["*.awk"]
contexts:
  - name: Normal
`
)

func definitionNames(defs []*Definition) []string {
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name()
	}
	return names
}

func TestNewRepository(t *testing.T) {
	t.Run("nil source", func(t *testing.T) {
		if _, err := NewRepository(nil); !errors.Is(err, ErrNoSource) {
			t.Errorf("NewRepository(nil) error = %v, want ErrNoSource", err)
		}
	})

	t.Run("definitions sorted by section and name", func(t *testing.T) {
		repo := newTestRepository(t, goYAML, templateYAML, awkYAML)
		want := []string{"Go Template", "AWK", "Go"}
		if diff := cmp.Diff(want, definitionNames(repo.Definitions())); diff != "" {
			t.Errorf("Definitions() mismatch (-want +got):\n%s", diff)
		}
		for _, d := range repo.Definitions() {
			if d.IsLoaded() {
				t.Errorf("%s loaded eagerly", d.Name())
			}
		}
	})
}

func TestRepositoryLookup(t *testing.T) {
	repo := newTestRepository(t, goYAML, templateYAML, awkYAML)

	t.Run("by name", func(t *testing.T) {
		tests := []struct {
			name string
			want string
		}{
			{"Go", "Go"},
			{"go", "Go"},
			{"GOLANG", "Go"},
			{"awk", "AWK"},
			{"Python", ""},
		}
		for _, tt := range tests {
			got := ""
			if d := repo.DefinitionForName(tt.name); d != nil {
				got = d.Name()
			}
			if got != tt.want {
				t.Errorf("DefinitionForName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		}
	})

	t.Run("by file name", func(t *testing.T) {
		want := []string{"Go Template", "Go"}
		if diff := cmp.Diff(want, definitionNames(repo.DefinitionsForFileName("/src/main.go"))); diff != "" {
			t.Errorf("DefinitionsForFileName() mismatch (-want +got):\n%s", diff)
		}
		if d := repo.DefinitionForFileName("x.awk"); d == nil || d.Name() != "AWK" {
			t.Errorf("DefinitionForFileName(x.awk) = %v, want AWK", d)
		}
		if d := repo.DefinitionForFileName("README"); d != nil {
			t.Errorf("DefinitionForFileName(README) = %q, want nil", d.Name())
		}
	})

	t.Run("by mime type", func(t *testing.T) {
		if diff := cmp.Diff([]string{"Go"}, definitionNames(repo.DefinitionsForMimeType("text/x-go"))); diff != "" {
			t.Errorf("DefinitionsForMimeType() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("metadata", func(t *testing.T) {
		d := repo.DefinitionForName("Go Template")
		if d.Section() != "Markup" || d.Priority() != 5 {
			t.Errorf("Section() = %q, Priority() = %d", d.Section(), d.Priority())
		}
		if diff := cmp.Diff([]string{"*.go", "*.tmpl"}, d.Extensions()); diff != "" {
			t.Errorf("Extensions() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestRepositoryReloadDefinition(t *testing.T) {
	repo := newTestRepository(t, outerYAML, innerYAML, goYAML)
	outer := mustDefinition(t, repo, "Outer")
	inner := mustDefinition(t, repo, "Inner")
	golang := mustDefinition(t, repo, "Go")

	outer.InitialContext()
	golang.InitialContext()
	if !outer.IsLoaded() || !inner.IsLoaded() || !golang.IsLoaded() {
		t.Fatal("definitions should be loaded")
	}

	if err := repo.ReloadDefinition("Inner"); err != nil {
		t.Fatalf("ReloadDefinition() error = %v", err)
	}
	if inner.IsLoaded() || outer.IsLoaded() {
		t.Error("Inner and its dependent Outer should be unloaded")
	}
	if !golang.IsLoaded() {
		t.Error("unrelated Go should stay loaded")
	}

	err := repo.ReloadDefinition("Nope")
	if !errors.Is(err, grammar.ErrUnknownGrammar) {
		t.Errorf("ReloadDefinition(Nope) error = %v, want ErrUnknownGrammar", err)
	}
}

func TestRepositoryReloadPicksUpChanges(t *testing.T) {
	src := grammar.NewMapSource()
	add := func(doc string) {
		g, err := grammar.Decode(grammar.EncodingYAML, []byte(doc))
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		src.Add(g)
	}
	add(foldingYAML)

	repo, err := NewRepository(src)
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	def := mustDefinition(t, repo, "Fold")
	region := def.InitialContext().Rules()[0].BeginRegion()

	add(awkYAML)
	if repo.DefinitionForName("AWK") != nil {
		t.Fatal("AWK visible before Reload")
	}
	if err := repo.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if repo.DefinitionForName("AWK") == nil {
		t.Error("AWK not visible after Reload")
	}
	if repo.DefinitionForName("Fold") != def {
		t.Error("Reload should keep the identity of existing definitions")
	}

	// folding region ids are stable across reloads
	if got := def.InitialContext().Rules()[0].BeginRegion(); got != region {
		t.Errorf("BeginRegion() = %v after reload, want %v", got, region)
	}
}

func TestRepositoryLogsWarnings(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	src := grammar.NewMapSource()
	g, err := grammar.Decode(grammar.EncodingYAML, []byte(brokenYAML))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	src.Add(g)

	repo, err := NewRepository(src, WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	def := mustDefinition(t, repo, "Broken")
	warnings := def.Warnings()

	entries := logs.FilterField(zap.String("definition", "Broken")).All()
	if len(entries) != len(warnings) {
		t.Errorf("logged %d warnings, collected %d", len(entries), len(warnings))
	}
	if logs.FilterMessageSnippet("unknown rule kind").Len() != 1 {
		t.Error("unknown rule kind warning not logged")
	}
}

func TestRepositoryConcurrentLoad(t *testing.T) {
	repo := newTestRepository(t, cLikeYAML, outerYAML, innerYAML)
	defs := []*Definition{
		mustDefinition(t, repo, "CLike"),
		mustDefinition(t, repo, "Outer"),
		mustDefinition(t, repo, "Inner"),
	}

	const workers = 8
	results := make([][]*definitionData, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for _, d := range defs {
				results[i] = append(results[i], d.load())
				h := NewHighlighter(d)
				state := State{}
				for _, line := range cLikeLines {
					state = h.HighlightLine(line, state, &recorder{})
				}
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		for j := range defs {
			if results[i][j] != results[0][j] {
				t.Errorf("worker %d saw a different instance of %s", i, defs[j].Name())
			}
		}
	}
}
