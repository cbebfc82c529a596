package contract

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed schemas/screening_*.json schemas/aliases.yaml
var artifacts embed.FS

// AliasMap holds the alias rewrites and canonical field paths for one schema
// version. Loaded once, read-only at request time.
type AliasMap struct {
	Canonical []string          `yaml:"canonical"`
	Aliases   map[string]string `yaml:"aliases"`

	canonicalSet map[string]bool
}

// IsCanonical reports whether path is a declared canonical field path.
func (m *AliasMap) IsCanonical(path string) bool {
	return m.canonicalSet[path]
}

func (m *AliasMap) index() {
	m.canonicalSet = make(map[string]bool, len(m.Canonical))
	for _, p := range m.Canonical {
		m.canonicalSet[p] = true
	}
}

// Registry loads and caches schema documents and alias maps per version.
// Documents are deployment artifacts embedded in the binary; they are loaded
// lazily and cached for the process lifetime, so after warm-up the registry
// is read-only and safe for concurrent use.
type Registry struct {
	defaultVersion string

	mu      sync.Mutex
	schemas map[string]*SchemaDoc

	aliasOnce sync.Once
	aliasErr  error
	aliases   map[string]*AliasMap
}

// NewRegistry creates a registry with the given default schema version. The
// default must have a registered schema document.
func NewRegistry(defaultVersion string) (*Registry, error) {
	r := &Registry{
		defaultVersion: defaultVersion,
		schemas:        make(map[string]*SchemaDoc),
	}
	if _, err := r.ScreeningSchema(defaultVersion); err != nil {
		return nil, fmt.Errorf("default schema version: %w", err)
	}
	if _, err := r.AliasMap(defaultVersion); err != nil {
		return nil, fmt.Errorf("default alias map: %w", err)
	}
	return r, nil
}

// DefaultVersion returns the version used when a payload omits schema_version.
func (r *Registry) DefaultVersion() string {
	return r.defaultVersion
}

// ScreeningSchema returns the parsed schema document for a version, loading
// and caching it on first use.
func (r *Registry) ScreeningSchema(version string) (*SchemaDoc, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if doc, ok := r.schemas[version]; ok {
		return doc, nil
	}

	raw, err := artifacts.ReadFile("schemas/screening_" + version + ".json")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &UnknownSchemaVersionError{Version: version}
		}
		return nil, fmt.Errorf("read schema %s: %w", version, err)
	}

	doc, err := parseSchemaDoc(raw)
	if err != nil {
		return nil, err
	}
	if doc.Version != version {
		return nil, fmt.Errorf("schema artifact for %s declares version %q", version, doc.Version)
	}

	r.schemas[version] = doc
	return doc, nil
}

// AliasMap returns the alias map for a version. The alias document covers all
// versions and is parsed once.
func (r *Registry) AliasMap(version string) (*AliasMap, error) {
	r.aliasOnce.Do(func() {
		raw, err := artifacts.ReadFile("schemas/aliases.yaml")
		if err != nil {
			r.aliasErr = fmt.Errorf("read alias maps: %w", err)
			return
		}
		var maps map[string]*AliasMap
		if err := yaml.Unmarshal(raw, &maps); err != nil {
			r.aliasErr = fmt.Errorf("parse alias maps: %w", err)
			return
		}
		for _, m := range maps {
			m.index()
		}
		r.aliases = maps
	})
	if r.aliasErr != nil {
		return nil, r.aliasErr
	}

	m, ok := r.aliases[version]
	if !ok {
		return nil, &UnknownSchemaVersionError{Version: version}
	}
	return m, nil
}

// Versions lists the schema versions with an embedded schema document.
func (r *Registry) Versions() ([]string, error) {
	entries, err := artifacts.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "screening_") && strings.HasSuffix(name, ".json") {
			out = append(out, strings.TrimSuffix(strings.TrimPrefix(name, "screening_"), ".json"))
		}
	}
	return out, nil
}
