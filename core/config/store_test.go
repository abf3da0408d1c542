package config

import (
	"errors"
	"io/fs"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/unichat/core/apierr"
)

const acmeProviders = `{
	"ACME": [{
		"config_name": "m1_key",
		"model_name": "m1",
		"model_url": "http://x",
		"init_config_msg": "hi",
		"api_supported": ["openai"],
		"api_endpoints": {"openai": "http://x/v1"}
	}]
}`

const multiProviders = `{
	"ZETA": [{"model_name": "z1", "api_supported": ["requests"], "api_endpoints": {"requests": "http://z/chat"}}],
	"ALPHA": [
		{"config_name": "a_key", "model_name": "a1", "model_url": "http://a", "init_config_msg": "be brief",
		 "api_supported": ["openai", "requests"], "api_endpoints": {"openai": "http://a/v1", "requests": "http://a/chat"}},
		{"config_name": "a_key2", "model_name": "a2", "api_supported": ["huggingface_hub"], "api_endpoints": {}}
	],
	"MIDDLE": [{"model_name": "m", "api_supported": ["openai"], "api_endpoints": {"openai": "http://m/v1"}}]
}`

// countingFS counts file opens so cache behaviour can be observed.
type countingFS struct {
	files fstest.MapFS
	mu    sync.Mutex
	opens map[string]int
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.mu.Lock()
	if c.opens == nil {
		c.opens = map[string]int{}
	}
	c.opens[name]++
	c.mu.Unlock()
	return c.files.Open(name)
}

func (c *countingFS) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens[name]
}

func newMapStore(files map[string]string) *Store {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return NewStore(fsys)
}

func TestStore_LoadsAndCachesProviders(t *testing.T) {
	fsys := &countingFS{files: fstest.MapFS{
		"providers.json": {Data: []byte(acmeProviders)},
	}}
	store := NewStore(fsys)

	for i := 0; i < 3; i++ {
		names, err := store.ListProviders()
		require.NoError(t, err)
		assert.Equal(t, []string{"ACME"}, names)
	}
	assert.Equal(t, 1, fsys.count("providers.json"), "catalog must be parsed once")

	store.ClearCache()
	_, err := store.ListProviders()
	require.NoError(t, err)
	assert.Equal(t, 2, fsys.count("providers.json"), "ClearCache must force a reload")
}

func TestStore_ReloadSeesNewContent(t *testing.T) {
	fsys := fstest.MapFS{"providers.json": {Data: []byte(acmeProviders)}}
	store := NewStore(fsys)

	names, err := store.ListProviders()
	require.NoError(t, err)
	require.Equal(t, []string{"ACME"}, names)

	fsys["providers.json"] = &fstest.MapFile{Data: []byte(multiProviders)}
	names, err = store.ListProviders()
	require.NoError(t, err)
	assert.Equal(t, []string{"ACME"}, names, "cached catalog must be served until cleared")

	store.ClearCache()
	names, err = store.ListProviders()
	require.NoError(t, err)
	assert.Equal(t, []string{"ZETA", "ALPHA", "MIDDLE"}, names)
}

func TestStore_PreservesProviderOrder(t *testing.T) {
	store := newMapStore(map[string]string{"providers.json": multiProviders})

	names, err := store.ListProviders()
	require.NoError(t, err)
	assert.Equal(t, []string{"ZETA", "ALPHA", "MIDDLE"}, names)
}

func TestStore_MissingProvidersFile(t *testing.T) {
	store := newMapStore(nil)

	_, err := store.ListProviders()
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierr.ErrConfigLoad))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "providers.json")
}

func TestStore_FailedLoadIsNotCached(t *testing.T) {
	fsys := fstest.MapFS{"providers.json": {Data: []byte(`{"ACME": [`)}}
	store := NewStore(fsys)

	_, err := store.Providers()
	require.ErrorIs(t, err, apierr.ErrConfigLoad)

	fsys["providers.json"] = &fstest.MapFile{Data: []byte(acmeProviders)}
	_, err = store.Providers()
	assert.NoError(t, err, "a fixed file must be picked up without ClearCache")
}

func TestStore_RejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"not an object", `["ACME"]`, "expected a JSON object"},
		{"empty config list", `{"ACME": []}`, "has no configurations"},
		{"empty model name", `{"ACME": [{"model_name": " ", "api_supported": ["openai"]}]}`, "model_name must be non-empty"},
		{"unknown api type", `{"ACME": [{"model_name": "m", "api_supported": ["grpc"]}]}`, `unknown api type "grpc"`},
		{"endpoint outside supported set", `{"ACME": [{"model_name": "m", "api_supported": ["openai"], "api_endpoints": {"requests": "http://x"}}]}`, `"requests" is not listed`},
		{"duplicate provider", `{"ACME": [{"model_name": "m"}], "ACME": [{"model_name": "n"}]}`, `duplicate key "ACME"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMapStore(map[string]string{"providers.json": tt.content})

			_, err := store.Providers()
			require.Error(t, err)
			assert.ErrorIs(t, err, apierr.ErrConfigLoad)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestStore_Secrets(t *testing.T) {
	store := newMapStore(map[string]string{"secret.json": `{"m1_key": "sk-test"}`})

	secrets, err := store.Secrets()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", secrets["m1_key"])

	secrets["m1_key"] = "tampered"
	again, err := store.Secrets()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", again["m1_key"], "callers must not be able to mutate the cache")
}

func TestStore_SecretsMalformed(t *testing.T) {
	store := newMapStore(map[string]string{"secret.json": `{"m1_key": 42}`})

	_, err := store.Secrets()
	require.ErrorIs(t, err, apierr.ErrConfigLoad)
	assert.Contains(t, err.Error(), "secret.json")
}

func TestStore_DefaultsOptional(t *testing.T) {
	store := newMapStore(nil)

	defaults, err := store.Defaults()
	require.NoError(t, err)
	assert.Equal(t, Defaults{}, defaults)
}

func TestStore_DefaultsParsed(t *testing.T) {
	store := newMapStore(map[string]string{"defaults.json": `{
		"_comment": "advisory only",
		"default_provider": "ACME",
		"default_config_index": 0,
		"default_api_type": "openai",
		"timeouts": {"connect": 10, "read": 45.5},
		"retry_policy": {"max_retries": 3, "backoff_factor": 0.5},
		"logging": {"level": "debug", "format": "pretty"}
	}`})

	defaults, err := store.Defaults()
	require.NoError(t, err)
	assert.Equal(t, "ACME", defaults.Provider)
	require.NotNil(t, defaults.ConfigIndex)
	assert.Equal(t, 0, *defaults.ConfigIndex)
	assert.Equal(t, "openai", defaults.APIType.String())
	assert.Equal(t, 3, defaults.RetryPolicy.MaxRetries)
	assert.Equal(t, "pretty", defaults.Logging.Format)

	connect, read, ok := defaults.Timeouts.Durations()
	require.True(t, ok)
	assert.Equal(t, "10s", connect.String())
	assert.Equal(t, "45.5s", read.String())
}

func TestStore_DefaultsMalformed(t *testing.T) {
	store := newMapStore(map[string]string{"defaults.json": `{"timeouts": "soon"}`})

	_, err := store.Defaults()
	assert.ErrorIs(t, err, apierr.ErrConfigLoad)
}

func TestStore_WithFileNames(t *testing.T) {
	fsys := fstest.MapFS{"conf/p.json": {Data: []byte(acmeProviders)}}
	store := NewStore(fsys, WithFileNames("conf/p.json", "", ""))

	assert.Equal(t, "conf/p.json", store.FileName(KindProviders))
	assert.Equal(t, DefaultSecretsFile, store.FileName(KindSecrets))
	require.NoError(t, store.Load(KindProviders))
}

func TestStore_LoadUnknownKind(t *testing.T) {
	err := newMapStore(nil).Load(Kind(42))
	assert.ErrorIs(t, err, apierr.ErrInvalidParameter)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "providers", KindProviders.String())
	assert.Equal(t, "secrets", KindSecrets.String())
	assert.Equal(t, "defaults", KindDefaults.String())
	assert.Equal(t, "unknown", Kind(9).String())
}
