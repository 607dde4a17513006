package syntax

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/ksyntax/internal/grammar"
)

// ErrNoSource is returned by NewRepository without a grammar source.
var ErrNoSource = errors.New("syntax: no grammar source")

// maxFoldingRegions is the number of distinct folding region ids.
const maxFoldingRegions = 1<<16 - 1

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger load warnings are reported to.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Repository is the set of definitions available from one grammar source.
// Definitions referencing each other by name are resolved through it.
//
// A Repository is safe for concurrent use.
type Repository struct {
	source grammar.Source
	logger *zap.Logger

	// mu serializes loading, reloading and id allocation.
	mu           sync.Mutex
	nextFormatID int
	foldingIDs   map[foldingKey]uint16

	idxMu  sync.RWMutex
	byName map[string]*Definition
	sorted []*Definition
}

type foldingKey struct {
	definition string
	region     string
}

// NewRepository reads the headers of every grammar in src. Definitions are
// loaded lazily.
func NewRepository(src grammar.Source, opts ...Option) (*Repository, error) {
	if src == nil {
		return nil, ErrNoSource
	}

	r := &Repository{
		source:     src,
		logger:     zap.NewNop(),
		foldingIDs: make(map[foldingKey]uint16),
		byName:     make(map[string]*Definition),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.refreshIndex(); err != nil {
		return nil, err
	}
	return r, nil
}

// refreshIndex re-reads the headers from the source. Definitions whose name
// is still present keep their identity.
func (r *Repository) refreshIndex() error {
	headers, err := r.source.Headers()
	if err != nil {
		return fmt.Errorf("read grammar headers: %w", err)
	}

	r.idxMu.Lock()
	defer r.idxMu.Unlock()

	byName := make(map[string]*Definition, len(headers))
	for i := range headers {
		h := headers[i]
		if h.Name == "" {
			r.logger.Warn("grammar without name ignored")
			continue
		}
		if _, dup := byName[h.Name]; dup {
			r.logger.Warn("duplicate grammar name ignored", zap.String("definition", h.Name))
			continue
		}
		d := r.byName[h.Name]
		if d == nil {
			d = &Definition{repo: r}
		}
		d.header.Store(&h)
		byName[h.Name] = d
	}
	for name, d := range r.byName {
		if _, ok := byName[name]; !ok {
			d.data.Store(nil)
		}
	}

	sorted := make([]*Definition, 0, len(byName))
	for _, d := range byName {
		sorted = append(sorted, d)
	}
	slices.SortFunc(sorted, func(a, b *Definition) int {
		if c := strings.Compare(strings.ToLower(a.Section()), strings.ToLower(b.Section())); c != 0 {
			return c
		}
		return strings.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
	})

	r.byName = byName
	r.sorted = sorted
	return nil
}

// Logger returns the repository logger.
func (r *Repository) Logger() *zap.Logger {
	return r.logger
}

// Definitions returns every definition, sorted by section and name.
func (r *Repository) Definitions() []*Definition {
	r.idxMu.RLock()
	defer r.idxMu.RUnlock()
	return slices.Clone(r.sorted)
}

// DefinitionForName finds a definition by name. The exact name is tried
// first, then a case-insensitive match, then the alternative names.
// It returns nil if nothing matches.
func (r *Repository) DefinitionForName(name string) *Definition {
	r.idxMu.RLock()
	defer r.idxMu.RUnlock()

	if d, ok := r.byName[name]; ok {
		return d
	}
	for _, d := range r.sorted {
		if strings.EqualFold(d.Name(), name) {
			return d
		}
	}
	for _, d := range r.sorted {
		for _, alt := range d.meta().AlternativeNames {
			if strings.EqualFold(alt, name) {
				return d
			}
		}
	}
	return nil
}

// DefinitionForFileName returns the highest priority definition whose
// extension wildcards match the base name of fileName, or nil.
func (r *Repository) DefinitionForFileName(fileName string) *Definition {
	defs := r.DefinitionsForFileName(fileName)
	if len(defs) == 0 {
		return nil
	}
	return defs[0]
}

// DefinitionsForFileName returns all definitions matching fileName, highest
// priority first.
func (r *Repository) DefinitionsForFileName(fileName string) []*Definition {
	base := filepath.Base(fileName)
	return r.matching(func(d *Definition) bool {
		for _, pattern := range d.meta().Extensions {
			if ok, _ := filepath.Match(pattern, base); ok {
				return true
			}
		}
		return false
	})
}

// DefinitionsForMimeType returns all definitions handling mimeType, highest
// priority first.
func (r *Repository) DefinitionsForMimeType(mimeType string) []*Definition {
	return r.matching(func(d *Definition) bool {
		return slices.Contains(d.meta().MimeTypes, mimeType)
	})
}

func (r *Repository) matching(match func(*Definition) bool) []*Definition {
	r.idxMu.RLock()
	var out []*Definition
	for _, d := range r.sorted {
		if match(d) {
			out = append(out, d)
		}
	}
	r.idxMu.RUnlock()

	slices.SortStableFunc(out, func(a, b *Definition) int {
		return b.Priority() - a.Priority()
	})
	return out
}

// Reload re-reads the source headers and discards every loaded definition.
// States created before are reset when used again.
func (r *Repository) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.refreshIndex(); err != nil {
		return err
	}
	for _, d := range r.Definitions() {
		d.data.Store(nil)
	}
	r.logger.Debug("grammars reloaded")
	return nil
}

// ReloadDefinition discards the named definition and every loaded
// definition that references it, directly or transitively.
func (r *Repository) ReloadDefinition(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.refreshIndex(); err != nil {
		return err
	}
	target := r.DefinitionForName(name)
	if target == nil {
		return fmt.Errorf("%q: %w", name, grammar.ErrUnknownGrammar)
	}

	stale := map[*Definition]bool{target: true}
	defs := r.Definitions()
	for changed := true; changed; {
		changed = false
		for _, d := range defs {
			data := d.data.Load()
			if stale[d] || data == nil {
				continue
			}
			if slices.ContainsFunc(data.included, func(inc *Definition) bool { return stale[inc] }) {
				stale[d] = true
				changed = true
			}
		}
	}
	for d := range stale {
		d.data.Store(nil)
	}
	r.logger.Debug("grammar reloaded", zap.String("definition", target.Name()), zap.Int("dependents", len(stale)-1))
	return nil
}

// load loads d and any definition it references that is not loaded yet.
// All of them are published together once fully resolved.
func (r *Repository) load(d *Definition) *definitionData {
	r.mu.Lock()
	defer r.mu.Unlock()

	if data := d.data.Load(); data != nil {
		return data
	}

	l := newLoader(r)
	data := l.load(d)
	for def, dd := range l.batch {
		def.data.Store(dd)
	}
	return data
}

// newFormatID returns the next format id. The caller holds mu.
func (r *Repository) newFormatID() int {
	r.nextFormatID++
	return r.nextFormatID
}

// foldingRegionID returns the stable id of a named region. The caller
// holds mu.
func (r *Repository) foldingRegionID(definition, region string) uint16 {
	key := foldingKey{definition: definition, region: region}
	if id, ok := r.foldingIDs[key]; ok {
		return id
	}
	if len(r.foldingIDs) >= maxFoldingRegions {
		return 0
	}
	id := uint16(len(r.foldingIDs) + 1)
	r.foldingIDs[key] = id
	return id
}
