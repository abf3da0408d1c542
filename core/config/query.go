package config

import (
	"slices"

	"github.com/leofalp/unichat/core/apierr"
	"github.com/leofalp/unichat/providers/ai"
)

// ListProviders returns the provider names in file order.
func (s *Store) ListProviders() ([]string, error) {
	catalog, err := s.Providers()
	if err != nil {
		return nil, err
	}
	return catalog.Names(), nil
}

// Configs returns the configuration list of provider.
func (s *Store) Configs(provider string) ([]ProviderConfig, error) {
	catalog, err := s.Providers()
	if err != nil {
		return nil, err
	}

	list, ok := catalog.Configs(provider)
	if !ok {
		return nil, apierr.New(apierr.ErrNotFound, "config.Configs",
			"provider %q not found. Available: %s", provider, apierr.List(catalog.Names()))
	}
	return list, nil
}

// Config returns configuration index of provider.
func (s *Store) Config(provider string, index int) (ProviderConfig, error) {
	list, err := s.Configs(provider)
	if err != nil {
		return ProviderConfig{}, err
	}

	if index < 0 || index >= len(list) {
		return ProviderConfig{}, apierr.New(apierr.ErrNotFound, "config.Config",
			"index %d out of range for provider %q (max: %d)", index, provider, len(list)-1)
	}
	return list[index], nil
}

// Attribute returns one attribute of a configuration as text. Attributes
// absent from the JSON object are reported as not found, listing the
// attributes that are present.
func (s *Store) Attribute(provider, attribute string, index int) (string, error) {
	cfg, err := s.Config(provider, index)
	if err != nil {
		return "", err
	}

	value, ok := cfg.Attribute(attribute)
	if !ok {
		return "", apierr.New(apierr.ErrNotFound, "config.Attribute",
			"attribute %q not found for provider %q. Available: %s", attribute, provider, apierr.List(cfg.Attributes()))
	}
	return value, nil
}

// SupportedAPITypes returns the api_supported list of a configuration, in
// file order.
func (s *Store) SupportedAPITypes(provider string, index int) ([]ai.APIType, error) {
	cfg, err := s.Config(provider, index)
	if err != nil {
		return nil, err
	}
	return cfg.SupportedAPITypes, nil
}

// Endpoint returns the URL a configuration declares for apiType.
func (s *Store) Endpoint(provider string, apiType ai.APIType, index int) (string, error) {
	cfg, err := s.Config(provider, index)
	if err != nil {
		return "", err
	}

	url, ok := cfg.Endpoints[apiType]
	if !ok {
		available := make([]ai.APIType, 0, len(cfg.Endpoints))
		for t := range cfg.Endpoints {
			available = append(available, t)
		}
		slices.Sort(available)
		return "", apierr.New(apierr.ErrNotFound, "config.Endpoint",
			"endpoint type %q not found for provider %q. Available: %s", apiType, provider, apierr.List(available))
	}
	return url, nil
}

// FilterByAPIType returns the providers with at least one configuration
// supporting apiType, each keeping only those configurations.
func (s *Store) FilterByAPIType(apiType ai.APIType) (*Catalog, error) {
	catalog, err := s.Providers()
	if err != nil {
		return nil, err
	}
	return catalog.filter(func(cfg ProviderConfig) bool { return cfg.Supports(apiType) }), nil
}

// AllAPITypes returns every api type used anywhere in the catalog, sorted.
func (s *Store) AllAPITypes() ([]ai.APIType, error) {
	catalog, err := s.Providers()
	if err != nil {
		return nil, err
	}

	var out []ai.APIType
	for _, name := range catalog.names {
		for _, cfg := range catalog.configs[name] {
			for _, t := range cfg.SupportedAPITypes {
				if !slices.Contains(out, t) {
					out = append(out, t)
				}
			}
		}
	}
	slices.Sort(out)
	return out, nil
}
