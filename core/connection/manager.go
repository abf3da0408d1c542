package connection

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/leofalp/unichat/core/apierr"
	"github.com/leofalp/unichat/core/config"
	"github.com/leofalp/unichat/core/credentials"
	"github.com/leofalp/unichat/internal/utils"
	"github.com/leofalp/unichat/providers/ai"
	"github.com/leofalp/unichat/providers/memory"
	"github.com/leofalp/unichat/providers/memory/inmemory"
	"github.com/leofalp/unichat/providers/observability"
)

// Default transport timeouts applied to every session.
const (
	DefaultConnectTimeout = 30 * time.Second
	DefaultReadTimeout    = 60 * time.Second
)

// Option configures a [Manager].
type Option func(*Manager)

// WithResolver sets the credential resolver. The default resolves from the
// store's secrets table only.
func WithResolver(r *credentials.Resolver) Option {
	return func(m *Manager) {
		if r != nil {
			m.resolver = r
		}
	}
}

// WithRegistry sets the transport registry. The default is
// [ai.DefaultRegistry].
func WithRegistry(r *ai.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// WithLogger sets the logger shared by the manager and its sessions.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTimeouts overrides the connect and read timeouts applied to transports
// that support them.
func WithTimeouts(connect, read time.Duration) Option {
	return func(m *Manager) {
		m.connectTimeout = connect
		m.readTimeout = read
	}
}

// WithMemory sets the factory creating the history store of each session.
func WithMemory(factory func() memory.Provider) Option {
	return func(m *Manager) {
		if factory != nil {
			m.newMemory = factory
		}
	}
}

// Manager validates connection selections and creates sessions from them.
// It is safe for concurrent use.
type Manager struct {
	store          *config.Store
	resolver       *credentials.Resolver
	registry       *ai.Registry
	logger         *slog.Logger
	connectTimeout time.Duration
	readTimeout    time.Duration
	newMemory      func() memory.Provider

	mu         sync.Mutex
	params     Params
	configured bool
	sessions   []*Session
	created    int
}

// NewManager returns an unconfigured manager reading from store.
func NewManager(store *config.Store, opts ...Option) *Manager {
	m := &Manager{
		store:          store,
		registry:       ai.DefaultRegistry,
		logger:         slog.Default(),
		connectTimeout: DefaultConnectTimeout,
		readTimeout:    DefaultReadTimeout,
		newMemory:      func() memory.Provider { return inmemory.New() },
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.resolver == nil {
		m.resolver = credentials.NewResolver(store, credentials.WithLogger(m.logger))
	}
	return m
}

// Store returns the configuration store of the manager.
func (m *Manager) Store() *config.Store {
	return m.store
}

// Configure validates the selection and resolves everything a session needs.
// On failure the previous configuration, if any, is kept.
func (m *Manager) Configure(provider string, index int, apiType ai.APIType) (*Manager, error) {
	const op = "connection.Configure"

	params, err := m.resolve(op, provider, index, apiType)
	if err != nil {
		if !apierr.IsKnown(err) {
			err = apierr.Wrap(apierr.ErrAPIClient, op, err, "failed to configure API for provider %q", provider)
		}
		m.logger.Debug("Configuration rejected",
			slog.String(observability.AttrProvider, provider),
			slog.Int(observability.AttrConfigIndex, index),
			slog.String(observability.AttrAPIType, apiType.String()),
			slog.String(observability.AttrError, err.Error()))
		return nil, err
	}

	m.mu.Lock()
	m.params = params
	m.configured = true
	m.mu.Unlock()

	m.logger.Info("Connection configured", slog.Any("params", params))
	return m, nil
}

func (m *Manager) resolve(op, provider string, index int, apiType ai.APIType) (Params, error) {
	providers, err := m.store.ListProviders()
	if err != nil {
		return Params{}, err
	}
	if !slices.Contains(providers, provider) {
		return Params{}, apierr.New(apierr.ErrInvalidParameter, op,
			"invalid provider %q. Available: %s", provider, apierr.List(providers))
	}

	if index < 0 {
		return Params{}, apierr.New(apierr.ErrInvalidParameter, op, "config index must be >= 0, got: %d", index)
	}

	configs, err := m.store.Configs(provider)
	if err != nil {
		return Params{}, err
	}
	if index >= len(configs) {
		return Params{}, apierr.New(apierr.ErrInvalidParameter, op,
			"config index %d out of range for provider %q (max: %d)", index, provider, len(configs)-1)
	}

	cfg := configs[index]
	if !cfg.Supports(apiType) {
		return Params{}, apierr.New(apierr.ErrInvalidParameter, op,
			"api type %q not supported by provider %q config %d. Supported: %s",
			apiType, provider, index, apierr.List(cfg.SupportedAPITypes))
	}

	endpoint, err := m.store.Endpoint(provider, apiType, index)
	if err != nil {
		return Params{}, err
	}

	secret, err := m.resolver.ResolveIndex(provider, index)
	if err != nil {
		return Params{}, err
	}
	if utils.IsBlank(secret) {
		return Params{}, apierr.New(apierr.ErrInvalidParameter, op,
			"no valid API key found for provider %q config %d. Check your environment variables or secrets configuration", provider, index)
	}

	return Params{
		Provider:     provider,
		ConfigIndex:  index,
		APIType:      apiType,
		EndpointURL:  endpoint,
		ModelName:    cfg.ModelName,
		InitMessage:  cfg.InitMessage,
		SecretAPIKey: secret,
	}, nil
}

// Validate reports whether a configuration with a non-blank secret is in
// place.
func (m *Manager) Validate() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configured && len(m.params.missing()) == 0
}

// Params returns the current configuration. ok is false before the first
// successful [Manager.Configure].
func (m *Manager) Params() (params Params, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params, m.configured
}

// MissingFields names the parameters that prevent session creation.
func (m *Manager) MissingFields() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.missingLocked()
}

func (m *Manager) missingLocked() []string {
	if !m.configured {
		return slices.Clone(allFields)
	}
	return m.params.missing()
}

// SessionOption configures [Manager.CreateSession].
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	id    string
	hasID bool
}

// WithSessionID sets an explicit session identifier.
func WithSessionID(id string) SessionOption {
	return func(o *sessionOptions) {
		o.id = id
		o.hasID = true
	}
}

// CreateSession builds a transport for the current configuration and wraps
// it in a new tracked session. Without [WithSessionID] the id is
// "session_<n>", n being the number of sessions created so far, moving past
// ids held by open sessions. An explicit id already held by an open session
// is rejected.
func (m *Manager) CreateSession(opts ...SessionOption) (*Session, error) {
	const op = "connection.CreateSession"

	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if missing := m.missingLocked(); len(missing) > 0 {
		return nil, apierr.New(apierr.ErrInvalidParameter, op,
			"configuration incomplete. Missing: %s. Use Configure first", apierr.List(missing))
	}

	id := m.nextIDLocked()
	if o.hasID {
		if utils.IsBlank(o.id) {
			return nil, apierr.New(apierr.ErrInvalidParameter, op, "session id cannot be empty")
		}
		if m.openLocked(o.id) {
			return nil, apierr.New(apierr.ErrInvalidParameter, op, "session id %q is already in use", o.id)
		}
		id = o.id
	}

	params := m.params
	transport, err := m.registry.Build(params.APIType, params.EndpointURL, params.SecretAPIKey, params.ModelName)
	if err != nil {
		if !apierr.IsKnown(err) {
			err = apierr.Wrap(apierr.ErrAPIClient, op, err, "failed to create session for provider %q", params.Provider)
		}
		return nil, err
	}

	if ts, ok := transport.(ai.TimeoutSetter); ok {
		if err := ts.SetTimeout(m.connectTimeout, m.readTimeout); err != nil {
			m.logger.Warn("Could not apply transport timeouts",
				slog.String(observability.AttrSessionID, id),
				slog.String(observability.AttrError, err.Error()))
		} else {
			m.logger.Debug("Transport timeouts applied",
				slog.String(observability.AttrSessionID, id),
				slog.Duration(observability.AttrHTTPTimeoutConnect, m.connectTimeout),
				slog.Duration(observability.AttrHTTPTimeoutRead, m.readTimeout))
		}
	}

	sess := newSession(id, params, transport, m.newMemory(), m.logger)
	m.sessions = append(m.sessions, sess)
	m.created++

	sess.logger.Info("Session created")
	return sess, nil
}

func (m *Manager) nextIDLocked() string {
	for n := m.created; ; n++ {
		if id := fmt.Sprintf("session_%d", n); !m.openLocked(id) {
			return id
		}
	}
}

// openLocked reports whether a tracked, open session uses id.
func (m *Manager) openLocked(id string) bool {
	for _, s := range m.sessions {
		if s.ID() == id && !s.Closed() {
			return true
		}
	}
	return false
}

// Sessions returns the tracked sessions that are still open.
func (m *Manager) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if !s.Closed() {
			out = append(out, s)
		}
	}
	return out
}

// CloseAll closes and forgets every tracked session. It is safe to call
// more than once.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = nil
	m.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", s.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// Providers lists the provider names of the catalog in file order.
func (m *Manager) Providers() ([]string, error) {
	return m.store.ListProviders()
}

// ProviderConfigs returns the configuration list of provider.
func (m *Manager) ProviderConfigs(provider string) ([]config.ProviderConfig, error) {
	return m.store.Configs(provider)
}

// SupportedAPITypes returns the api types configuration index of provider
// supports.
func (m *Manager) SupportedAPITypes(provider string, index int) ([]ai.APIType, error) {
	return m.store.SupportedAPITypes(provider, index)
}
