// Package secrets resolves credentials from the managed secret file first and
// the process environment second.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/stock-radar/internal/models"
)

// Source is one layer of the credential lookup.
type Source interface {
	Name() string
	Lookup(key string) (string, bool)
}

// FileSource reads top-level string keys from a TOML secret file.
// A missing file is an empty source.
type FileSource struct {
	path   string
	values map[string]string
}

// NewFileSource loads path. Parse failures are returned; a missing file is not an error.
func NewFileSource(path string) (*FileSource, error) {
	s := &FileSource{path: path, values: map[string]string{}}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read secret file %s: %w", path, err)
	}

	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse secret file %s: %w", path, err)
	}
	for k, v := range raw {
		if str, ok := v.(string); ok {
			s.values[k] = str
		}
	}
	return s, nil
}

func (s *FileSource) Name() string { return "file:" + s.path }

func (s *FileSource) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// EnvSource reads the process environment.
type EnvSource struct{}

func (EnvSource) Name() string { return "env" }

func (EnvSource) Lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

// Resolver walks its sources in order.
type Resolver struct {
	sources []Source
}

// NewResolver creates a resolver over the given sources, first match wins.
func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

// NewDefaultResolver builds the secret-file-then-environment chain.
func NewDefaultResolver(secretFile string) (*Resolver, error) {
	file, err := NewFileSource(secretFile)
	if err != nil {
		return nil, err
	}
	return NewResolver(file, EnvSource{}), nil
}

// Resolve returns the first non-empty value for key, or a configuration error.
func (r *Resolver) Resolve(key string) (string, error) {
	v, _, err := r.ResolveWithSource(key)
	return v, err
}

// ResolveWithSource is Resolve plus the name of the source that answered.
func (r *Resolver) ResolveWithSource(key string) (string, string, error) {
	for _, src := range r.sources {
		if v, ok := src.Lookup(key); ok {
			return v, src.Name(), nil
		}
	}
	return "", "", models.NewConfigurationError(
		fmt.Sprintf("no se encontró %s: configúralo en el fichero de secretos o como variable de entorno", key), nil)
}

// LoadDotenv loads a .env file into the environment without overriding
// variables that are already set. A missing file is ignored.
func LoadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
