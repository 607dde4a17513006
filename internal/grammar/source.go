package grammar

import (
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
)

// Source provides descriptors to the engine.
type Source interface {
	// Headers returns the metadata of every grammar the source knows.
	Headers() ([]Header, error)

	// Load returns the full descriptor for a grammar name.
	// It is called again after a reload, so implementations should
	// return fresh data when the backing store changed.
	Load(name string) (*Grammar, error)
}

// MapSource serves descriptors held in memory.
type MapSource struct {
	mu       sync.RWMutex
	grammars map[string]*Grammar
}

// NewMapSource creates a source with the given descriptors.
func NewMapSource(grammars ...*Grammar) *MapSource {
	s := &MapSource{grammars: make(map[string]*Grammar, len(grammars))}
	for _, g := range grammars {
		s.Add(g)
	}
	return s
}

// Add registers or replaces a descriptor.
func (s *MapSource) Add(g *Grammar) {
	if g == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grammars[g.Name] = g
}

// Remove drops a descriptor.
func (s *MapSource) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grammars, name)
}

// Headers implements Source.
func (s *MapSource) Headers() ([]Header, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	headers := make([]Header, 0, len(s.grammars))
	for _, g := range s.grammars {
		headers = append(headers, g.Header)
	}
	sort.Slice(headers, func(i, j int) bool { return headers[i].Name < headers[j].Name })
	return headers, nil
}

// Load implements Source.
func (s *MapSource) Load(name string) (*Grammar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.grammars[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownGrammar)
	}
	return g, nil
}

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// FSSource reads descriptors from an explicit list of files. It never
// scans directories; the caller decides which files exist.
type FSSource struct {
	fs    FileSystem
	paths []string

	mu     sync.Mutex
	byName map[string]string
}

// NewFSSource creates a source over the given descriptor files. The
// encoding of each file is taken from its extension.
func NewFSSource(fsys FileSystem, paths ...string) *FSSource {
	if fsys == nil {
		fsys = DefaultFS()
	}
	return &FSSource{
		fs:    fsys,
		paths: append([]string(nil), paths...),
	}
}

// Headers implements Source. Every file is decoded to learn its name.
func (s *FSSource) Headers() ([]Header, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byName := make(map[string]string, len(s.paths))
	headers := make([]Header, 0, len(s.paths))
	for _, path := range s.paths {
		g, err := s.read(path)
		if err != nil {
			return nil, err
		}
		if _, dup := byName[g.Name]; dup {
			continue
		}
		byName[g.Name] = path
		headers = append(headers, g.Header)
	}
	s.byName = byName
	return headers, nil
}

// Load implements Source. The file is re-read on every call.
func (s *FSSource) Load(name string) (*Grammar, error) {
	s.mu.Lock()
	if s.byName == nil {
		s.mu.Unlock()
		if _, err := s.Headers(); err != nil {
			return nil, err
		}
		s.mu.Lock()
	}
	path, ok := s.byName[name]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownGrammar)
	}

	g, err := s.read(path)
	if err != nil {
		return nil, err
	}
	if g.Name != name {
		return nil, fmt.Errorf("%s: grammar renamed from %q to %q: %w", path, name, g.Name, ErrUnknownGrammar)
	}
	return g, nil
}

func (s *FSSource) read(path string) (*Grammar, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading grammar file %s: %w", path, err)
	}
	return decode(path, EncodingForPath(path), data)
}
