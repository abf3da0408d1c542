package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"sync"

	"github.com/leofalp/unichat/core/apierr"
	"github.com/leofalp/unichat/providers/observability"
)

// Kind identifies one of the three configuration resources.
type Kind int

const (
	KindProviders Kind = iota // providers.json, required
	KindSecrets               // secret.json, required unless an env fallback is used
	KindDefaults              // defaults.json, optional
)

func (k Kind) String() string {
	switch k {
	case KindProviders:
		return "providers"
	case KindSecrets:
		return "secrets"
	case KindDefaults:
		return "defaults"
	default:
		return "unknown"
	}
}

// Default resource identities inside the store filesystem.
const (
	DefaultProvidersFile = "providers.json"
	DefaultSecretsFile   = "secret.json"
	DefaultDefaultsFile  = "defaults.json"
)

// Option configures a [Store].
type Option func(*Store)

// WithFileNames overrides the file names of the three resources. Empty
// values keep the default name.
func WithFileNames(providers, secrets, defaults string) Option {
	return func(s *Store) {
		for kind, name := range map[Kind]string{KindProviders: providers, KindSecrets: secrets, KindDefaults: defaults} {
			if name != "" {
				s.files[kind] = name
			}
		}
	}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store is a read-through cache over the configuration files. Each resource
// is parsed at most once until [Store.ClearCache]; failed loads are not
// cached, so a fixed file is picked up by the next call.
type Store struct {
	fsys   fs.FS
	dir    string
	files  map[Kind]string
	logger *slog.Logger

	mu        sync.Mutex
	providers *Catalog
	secrets   Secrets
	defaults  *Defaults
}

// NewStore creates a store reading from fsys.
func NewStore(fsys fs.FS, opts ...Option) *Store {
	s := &Store{
		fsys: fsys,
		files: map[Kind]string{
			KindProviders: DefaultProvidersFile,
			KindSecrets:   DefaultSecretsFile,
			KindDefaults:  DefaultDefaultsFile,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDirStore creates a store reading from the directory dir.
func NewDirStore(dir string, opts ...Option) *Store {
	s := NewStore(os.DirFS(dir), opts...)
	s.dir = dir
	return s
}

// Dir returns the directory of a store built with [NewDirStore], or "".
func (s *Store) Dir() string {
	return s.dir
}

// FileName returns the resource identity of kind.
func (s *Store) FileName(kind Kind) string {
	return s.files[kind]
}

// Load warms the cache for kind.
func (s *Store) Load(kind Kind) error {
	var err error
	switch kind {
	case KindProviders:
		_, err = s.Providers()
	case KindSecrets:
		_, err = s.Secrets()
	case KindDefaults:
		_, err = s.Defaults()
	default:
		err = apierr.New(apierr.ErrInvalidParameter, "config.Load", "unknown config kind %d", int(kind))
	}
	return err
}

// Providers returns the provider catalog, loading it on first use.
func (s *Store) Providers() (*Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.providers != nil {
		return s.providers, nil
	}

	var catalog Catalog
	if err := s.readJSON(KindProviders, &catalog); err != nil {
		return nil, err
	}
	if err := catalog.Validate(); err != nil {
		return nil, apierr.Wrap(apierr.ErrConfigLoad, "config.Load", err, "invalid %s", s.files[KindProviders])
	}

	s.providers = &catalog
	s.logger.Debug("Provider catalog loaded",
		slog.String(observability.AttrConfigFile, s.files[KindProviders]),
		slog.Int("providers", catalog.Len()))
	return s.providers, nil
}

// Secrets returns a copy of the secrets table, loading it on first use.
func (s *Store) Secrets() (Secrets, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.secrets == nil {
		var secrets Secrets
		if err := s.readJSON(KindSecrets, &secrets); err != nil {
			return nil, err
		}
		if secrets == nil {
			secrets = Secrets{}
		}
		s.secrets = secrets
		s.logger.Debug("Secrets loaded",
			slog.String(observability.AttrConfigFile, s.files[KindSecrets]),
			slog.Int("entries", len(secrets)))
	}
	return maps.Clone(s.secrets), nil
}

// Defaults returns the advisory defaults. A missing defaults file yields
// empty Defaults; a malformed one is an error.
func (s *Store) Defaults() (Defaults, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.defaults != nil {
		return *s.defaults, nil
	}

	var defaults Defaults
	if err := s.readJSON(KindDefaults, &defaults); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Defaults{}, err
		}
		s.logger.Debug("No defaults file, using empty defaults",
			slog.String(observability.AttrConfigFile, s.files[KindDefaults]))
	}

	s.defaults = &defaults
	return defaults, nil
}

// ClearCache drops every cached resource; the next access reloads from the
// filesystem.
func (s *Store) ClearCache() {
	s.mu.Lock()
	s.providers = nil
	s.secrets = nil
	s.defaults = nil
	s.mu.Unlock()
}

// readJSON decodes the resource of kind into v. Callers hold s.mu.
func (s *Store) readJSON(kind Kind, v any) error {
	name := s.files[kind]

	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return apierr.Wrap(apierr.ErrConfigLoad, "config.Load", err, "failed to load %s", name)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apierr.Wrap(apierr.ErrConfigLoad, "config.Load", err, "failed to parse %s", name)
	}
	return nil
}
