package credentials

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/leofalp/unichat/core/apierr"
	"github.com/leofalp/unichat/core/config"
	"github.com/leofalp/unichat/providers/observability"
)

// configNameAttribute is the configuration attribute holding the secrets
// table key.
const configNameAttribute = "config_name"

// Selector picks the secrets table key for a provider.
type Selector interface {
	key(r *Resolver, provider string) (string, error)
}

type byName string

func (s byName) key(*Resolver, string) (string, error) {
	return string(s), nil
}

type byIndex int

func (s byIndex) key(r *Resolver, provider string) (string, error) {
	return r.store.Attribute(provider, configNameAttribute, int(s))
}

// ByName selects the secrets table entry key directly.
func ByName(key string) Selector { return byName(key) }

// ByIndex selects the entry named by the config_name attribute of
// configuration i of the provider.
func ByIndex(i int) Selector { return byIndex(i) }

// Option configures a [Resolver].
type Option func(*Resolver)

// WithEnvFallback consults process environment variables when the secrets
// table has no entry for a key.
func WithEnvFallback() Option {
	return func(r *Resolver) {
		r.useEnv = true
	}
}

// WithDotEnv enables the environment fallback and adds the variables of a
// .env file to it. Process variables take precedence over the file.
func WithDotEnv(path string) Option {
	return func(r *Resolver) {
		r.useEnv = true
		r.dotEnvPath = path
	}
}

// WithEnvPrefix prefixes every variable name derived by [EnvName].
func WithEnvPrefix(prefix string) Option {
	return func(r *Resolver) {
		r.envPrefix = prefix
	}
}

// WithLogger sets the logger for resolution diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver looks up API keys in the secrets table of a [config.Store].
type Resolver struct {
	store      *config.Store
	useEnv     bool
	dotEnvPath string
	envPrefix  string
	logger     *slog.Logger

	dotEnv    map[string]string
	dotEnvErr error
}

// NewResolver creates a resolver over store. The .env file, when configured,
// is read once here; a missing file only disables that source.
func NewResolver(store *config.Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.dotEnvPath != "" {
		r.dotEnv, r.dotEnvErr = godotenv.Read(r.dotEnvPath)
		if r.dotEnvErr != nil {
			r.logger.Debug("Could not read .env file",
				slog.String(observability.AttrConfigFile, r.dotEnvPath),
				slog.String(observability.AttrError, r.dotEnvErr.Error()))
		}
	}
	return r
}

// Resolve returns the credential of provider chosen by sel.
func (r *Resolver) Resolve(provider string, sel Selector) (string, error) {
	if sel == nil {
		return "", apierr.New(apierr.ErrInvalidParameter, "credentials.Resolve", "selector is nil")
	}

	key, err := sel.key(r, provider)
	if err != nil {
		return "", err
	}
	return r.lookup(provider, key)
}

// ResolveName returns the secrets table entry key.
func (r *Resolver) ResolveName(provider, key string) (string, error) {
	return r.Resolve(provider, ByName(key))
}

// ResolveIndex returns the secret referenced by config_name of configuration
// index of provider.
func (r *Resolver) ResolveIndex(provider string, index int) (string, error) {
	return r.Resolve(provider, ByIndex(index))
}

// EnvName returns the environment variable consulted for key.
func (r *Resolver) EnvName(key string) string {
	return EnvName(r.envPrefix, key)
}

func (r *Resolver) lookup(provider, key string) (string, error) {
	secrets, err := r.store.Secrets()
	if err != nil {
		// Without a secrets file the environment is the only source left.
		if !r.useEnv || !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		secrets = nil
	}

	if value, ok := secrets[key]; ok {
		r.logger.Debug("Credential resolved",
			slog.String(observability.AttrProvider, provider),
			slog.String(observability.AttrCredentialRef, key),
			slog.String(observability.AttrCredentialSource, "secrets"))
		return value, nil
	}

	if r.useEnv {
		name := r.EnvName(key)
		if value, source, ok := r.lookupEnv(name); ok {
			r.logger.Debug("Credential resolved",
				slog.String(observability.AttrProvider, provider),
				slog.String(observability.AttrCredentialRef, key),
				slog.String(observability.AttrCredentialSource, source))
			return value, nil
		}
		return "", apierr.New(apierr.ErrCredentialNotFound, "credentials.Resolve",
			"secret key %q not found in %s or environment variable %s", key, r.store.FileName(config.KindSecrets), name)
	}

	return "", apierr.New(apierr.ErrCredentialNotFound, "credentials.Resolve",
		"secret key %q not found in %s", key, r.store.FileName(config.KindSecrets))
}

func (r *Resolver) lookupEnv(name string) (value, source string, ok bool) {
	if value, ok := os.LookupEnv(name); ok && value != "" {
		return value, "env", true
	}
	if value, ok := r.dotEnv[name]; ok && value != "" {
		return value, "dotenv", true
	}
	return "", "", false
}

// EnvName derives an environment variable name from a secrets table key:
// upper case, with every character outside [A-Z0-9] replaced by '_'.
func EnvName(prefix, key string) string {
	var b strings.Builder
	b.Grow(len(prefix) + len(key))
	for _, c := range strings.ToUpper(prefix + key) {
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
