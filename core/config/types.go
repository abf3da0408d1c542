package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/leofalp/unichat/internal/utils"
	"github.com/leofalp/unichat/providers/ai"
)

// ProviderConfig is one entry of a provider's configuration list in
// providers.json.
type ProviderConfig struct {
	ConfigName        string                `json:"config_name"`
	ModelURL          string                `json:"model_url"`
	ModelName         string                `json:"model_name"`
	InitMessage       string                `json:"init_config_msg"`
	SupportedAPITypes []ai.APIType          `json:"api_supported"`
	Endpoints         map[ai.APIType]string `json:"api_endpoints"`

	// raw keeps every attribute present in the JSON object, in file order,
	// so attribute lookups can tell "absent" from "empty".
	keys []string
	raw  map[string]json.RawMessage
}

// UnmarshalJSON decodes the known fields and records which attributes the
// object actually carried.
func (p *ProviderConfig) UnmarshalJSON(data []byte) error {
	type plain ProviderConfig
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	keys, raw, err := decodeOrderedObject(data)
	if err != nil {
		return err
	}

	*p = ProviderConfig(decoded)
	p.keys = keys
	p.raw = raw
	return nil
}

// Supports reports whether apiType is listed in api_supported.
func (p ProviderConfig) Supports(apiType ai.APIType) bool {
	return slices.Contains(p.SupportedAPITypes, apiType)
}

// Attributes returns the attribute names present in the JSON object, in file
// order.
func (p ProviderConfig) Attributes() []string {
	return slices.Clone(p.keys)
}

// Attribute returns the attribute as text: strings verbatim, everything else
// (numbers, lists, maps) as compact JSON. ok is false when the attribute is
// absent from the JSON object.
func (p ProviderConfig) Attribute(name string) (value string, ok bool) {
	raw, ok := p.raw[name]
	if !ok {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw), true
	}
	return compact.String(), true
}

// Complete reports whether every descriptive field is present and non-empty.
// The core only requires model_name; this is a hint for listings.
func (p ProviderConfig) Complete() bool {
	for _, s := range []string{p.ConfigName, p.ModelURL, p.ModelName, p.InitMessage} {
		if utils.IsBlank(s) {
			return false
		}
	}
	return len(p.SupportedAPITypes) > 0 && len(p.Endpoints) > 0
}

func (p ProviderConfig) clone() ProviderConfig {
	out := p
	out.SupportedAPITypes = slices.Clone(p.SupportedAPITypes)
	out.Endpoints = maps.Clone(p.Endpoints)
	out.keys = slices.Clone(p.keys)
	out.raw = maps.Clone(p.raw)
	return out
}

// validate checks the invariants of a single configuration entry.
func (p ProviderConfig) validate() error {
	if utils.IsBlank(p.ModelName) {
		return errors.New("model_name must be non-empty")
	}
	for _, t := range p.SupportedAPITypes {
		if !t.Valid() {
			return fmt.Errorf("api_supported contains unknown api type %q", t)
		}
	}
	for t := range p.Endpoints {
		if !p.Supports(t) {
			return fmt.Errorf("api_endpoints key %q is not listed in api_supported", t)
		}
	}
	return nil
}

// Catalog maps provider names to their ordered configuration lists. Provider
// order follows providers.json.
type Catalog struct {
	names   []string
	configs map[string][]ProviderConfig
}

// UnmarshalJSON decodes providers.json, preserving provider order and
// rejecting duplicate provider names.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	names, raw, err := decodeOrderedObject(data)
	if err != nil {
		return err
	}

	configs := make(map[string][]ProviderConfig, len(names))
	for _, name := range names {
		var list []ProviderConfig
		if err := json.Unmarshal(raw[name], &list); err != nil {
			return fmt.Errorf("provider %q: %w", name, err)
		}
		configs[name] = list
	}

	c.names = names
	c.configs = configs
	return nil
}

// Validate checks the catalog invariants: every provider has at least one
// configuration and every configuration is valid.
func (c *Catalog) Validate() error {
	for _, name := range c.names {
		list := c.configs[name]
		if len(list) == 0 {
			return fmt.Errorf("provider %q has no configurations", name)
		}
		for i, cfg := range list {
			if err := cfg.validate(); err != nil {
				return fmt.Errorf("provider %q config %d: %w", name, i, err)
			}
		}
	}
	return nil
}

// Names returns the provider names in file order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.names)
}

// Len returns the number of providers.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Configs returns a copy of the configuration list of provider.
func (c *Catalog) Configs(provider string) ([]ProviderConfig, bool) {
	if c == nil {
		return nil, false
	}
	list, ok := c.configs[provider]
	if !ok {
		return nil, false
	}
	out := make([]ProviderConfig, len(list))
	for i, cfg := range list {
		out[i] = cfg.clone()
	}
	return out, true
}

// filter returns a new catalog with only the configs keep accepts. Providers
// left without configs are dropped.
func (c *Catalog) filter(keep func(ProviderConfig) bool) *Catalog {
	out := &Catalog{configs: make(map[string][]ProviderConfig)}
	for _, name := range c.names {
		var matching []ProviderConfig
		for _, cfg := range c.configs[name] {
			if keep(cfg) {
				matching = append(matching, cfg.clone())
			}
		}
		if len(matching) > 0 {
			out.names = append(out.names, name)
			out.configs[name] = matching
		}
	}
	return out
}

// Secrets maps a credential reference (the config_name of a provider
// configuration) to the credential itself.
type Secrets map[string]string

// Defaults holds the optional, advisory values of defaults.json. The core
// never enforces them.
type Defaults struct {
	Provider    string          `json:"default_provider,omitempty"`
	ConfigIndex *int            `json:"default_config_index,omitempty"`
	APIType     ai.APIType      `json:"default_api_type,omitempty"`
	Timeouts    Timeouts        `json:"timeouts,omitempty"`
	RetryPolicy RetryPolicy     `json:"retry_policy,omitempty"`
	Logging     LoggingDefaults `json:"logging,omitempty"`
}

// Timeouts are expressed in seconds.
type Timeouts struct {
	Connect float64 `json:"connect,omitempty"`
	Read    float64 `json:"read,omitempty"`
}

// Durations converts both values; ok is false unless both are positive.
func (t Timeouts) Durations() (connect, read time.Duration, ok bool) {
	if t.Connect <= 0 || t.Read <= 0 {
		return 0, 0, false
	}
	return time.Duration(t.Connect * float64(time.Second)), time.Duration(t.Read * float64(time.Second)), true
}

// RetryPolicy is a hint only; transports do not retry.
type RetryPolicy struct {
	MaxRetries    int     `json:"max_retries,omitempty"`
	BackoffFactor float64 `json:"backoff_factor,omitempty"`
}

// LoggingDefaults suggests a log level and format to front ends.
type LoggingDefaults struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
}

// decodeOrderedObject reads a JSON object and returns its keys in document
// order together with the raw value of each key. Duplicate keys are an
// error.
func decodeOrderedObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	var keys []string
	raw := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected an object key, got %v", tok)
		}
		if _, dup := raw[key]; dup {
			return nil, nil, fmt.Errorf("duplicate key %q", key)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("key %q: %w", key, err)
		}
		keys = append(keys, key)
		raw[key] = value
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, raw, nil
}
