package ai

import (
	"slices"
	"sync"

	"github.com/leofalp/unichat/core/apierr"
	"github.com/leofalp/unichat/internal/utils"
)

// Registry maps api types to transport constructors.
type Registry struct {
	mu           sync.RWMutex
	constructors map[APIType]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[APIType]Constructor)}
}

// DefaultRegistry is the process-wide registry transport packages register
// themselves into from their init functions.
var DefaultRegistry = NewRegistry()

// Register binds apiType to ctor. Registering the same api type again
// replaces the previous constructor, so repeated registration is harmless.
func (r *Registry) Register(apiType APIType, ctor Constructor) error {
	if utils.IsBlank(string(apiType)) {
		return apierr.New(apierr.ErrInvalidParameter, "ai.Register", "api type must be non-empty")
	}
	if ctor == nil {
		return apierr.New(apierr.ErrInvalidParameter, "ai.Register", "constructor for %q is nil", apiType)
	}

	r.mu.Lock()
	r.constructors[apiType] = ctor
	r.mu.Unlock()
	return nil
}

// Has reports whether a constructor is registered for apiType.
func (r *Registry) Has(apiType APIType) bool {
	r.mu.RLock()
	_, ok := r.constructors[apiType]
	r.mu.RUnlock()
	return ok
}

// Registered returns the registered api types in lexical order.
func (r *Registry) Registered() []APIType {
	r.mu.RLock()
	out := make([]APIType, 0, len(r.constructors))
	for t := range r.constructors {
		out = append(out, t)
	}
	r.mu.RUnlock()
	slices.Sort(out)
	return out
}

// Build instantiates the transport registered for apiType.
func (r *Registry) Build(apiType APIType, baseURL, apiKey, modelName string) (Transport, error) {
	r.mu.RLock()
	ctor, ok := r.constructors[apiType]
	r.mu.RUnlock()

	if !ok {
		return nil, apierr.New(apierr.ErrUnsupportedAPIType, "ai.Build",
			"no transport registered for api type %q. Registered: %s", apiType, apierr.List(r.Registered()))
	}

	transport, err := ctor(baseURL, apiKey, modelName)
	if err != nil {
		if apierr.IsKnown(err) {
			return nil, err
		}
		return nil, apierr.Wrap(apierr.ErrAPIClient, "ai.Build", err, "failed to initialize %q transport", apiType)
	}
	return transport, nil
}

// Register binds apiType to ctor in [DefaultRegistry].
func Register(apiType APIType, ctor Constructor) error {
	return DefaultRegistry.Register(apiType, ctor)
}

// MustRegister is like [Register] but panics on invalid input. It is meant
// for init functions, where a bad registration is a programming error.
func MustRegister(apiType APIType, ctor Constructor) {
	if err := Register(apiType, ctor); err != nil {
		panic(err)
	}
}

// Build instantiates a transport from [DefaultRegistry].
func Build(apiType APIType, baseURL, apiKey, modelName string) (Transport, error) {
	return DefaultRegistry.Build(apiType, baseURL, apiKey, modelName)
}
