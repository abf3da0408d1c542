package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/unichat/core/apierr"
	"github.com/leofalp/unichat/core/config"
)

const acmeProviders = `{
	"ACME": [
		{"config_name": "m1_key", "model_name": "m1", "api_supported": ["openai"], "api_endpoints": {"openai": "http://x/v1"}},
		{"config_name": "unichat test-key", "model_name": "m2", "api_supported": ["openai"]},
		{"model_name": "m3", "api_supported": ["openai"]}
	]
}`

func newStore(withSecrets bool) *config.Store {
	fsys := fstest.MapFS{"providers.json": {Data: []byte(acmeProviders)}}
	if withSecrets {
		fsys["secret.json"] = &fstest.MapFile{Data: []byte(`{"m1_key": "sk-test"}`)}
	}
	return config.NewStore(fsys)
}

func TestResolve_ByName(t *testing.T) {
	r := NewResolver(newStore(true))

	key, err := r.ResolveName("ACME", "m1_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)
}

func TestResolve_ByIndex(t *testing.T) {
	r := NewResolver(newStore(true))

	key, err := r.ResolveIndex("ACME", 0)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)
}

func TestResolve_MissingKeyNeverLeaksSecrets(t *testing.T) {
	r := NewResolver(newStore(true))

	_, err := r.ResolveName("ACME", "other_key")
	require.ErrorIs(t, err, apierr.ErrCredentialNotFound)
	require.ErrorIs(t, err, apierr.ErrAPIClient)
	assert.Contains(t, err.Error(), `"other_key"`)
	assert.NotContains(t, err.Error(), "sk-test")
}

func TestResolve_ByIndexErrors(t *testing.T) {
	r := NewResolver(newStore(true))

	_, err := r.ResolveIndex("ACME", 2)
	require.ErrorIs(t, err, apierr.ErrNotFound, "config without config_name")
	assert.Contains(t, err.Error(), "config_name")

	_, err = r.ResolveIndex("ACME", 7)
	assert.ErrorIs(t, err, apierr.ErrNotFound)

	_, err = r.ResolveIndex("NOPE", 0)
	assert.ErrorIs(t, err, apierr.ErrNotFound)
}

func TestResolve_NilSelector(t *testing.T) {
	_, err := NewResolver(newStore(true)).Resolve("ACME", nil)
	assert.ErrorIs(t, err, apierr.ErrInvalidParameter)
}

func TestResolve_MissingSecretsFile(t *testing.T) {
	r := NewResolver(newStore(false))

	_, err := r.ResolveName("ACME", "m1_key")
	require.ErrorIs(t, err, apierr.ErrConfigLoad)
	assert.Contains(t, err.Error(), "secret.json")
}

func TestResolve_EnvFallback(t *testing.T) {
	t.Setenv("UNICHAT_TEST_KEY", "sk-env")
	r := NewResolver(newStore(true), WithEnvFallback())

	key, err := r.ResolveIndex("ACME", 1)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", key)

	// The table still wins when it has the key.
	t.Setenv("M1_KEY", "sk-shadow")
	key, err = r.ResolveName("ACME", "m1_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)
}

func TestResolve_EnvFallbackWithoutSecretsFile(t *testing.T) {
	t.Setenv("M1_KEY", "sk-env")
	r := NewResolver(newStore(false), WithEnvFallback())

	key, err := r.ResolveIndex("ACME", 0)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", key)
}

func TestResolve_EnvFallbackMiss(t *testing.T) {
	r := NewResolver(newStore(true), WithEnvFallback(), WithEnvPrefix("unichat_missing_"))

	_, err := r.ResolveName("ACME", "nothing")
	require.ErrorIs(t, err, apierr.ErrCredentialNotFound)
	assert.Contains(t, err.Error(), "UNICHAT_MISSING_NOTHING")
}

func TestResolve_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_DOTENV_ONLY=sk-file\nAPP_BOTH=sk-file\n"), 0o600))
	t.Setenv("APP_BOTH", "sk-process")

	r := NewResolver(newStore(true), WithDotEnv(path), WithEnvPrefix("app_"))

	key, err := r.ResolveName("ACME", "dotenv_only")
	require.NoError(t, err)
	assert.Equal(t, "sk-file", key)

	key, err = r.ResolveName("ACME", "both")
	require.NoError(t, err)
	assert.Equal(t, "sk-process", key, "process environment wins over .env")
}

func TestResolve_DotEnvMissingFile(t *testing.T) {
	r := NewResolver(newStore(true), WithDotEnv(filepath.Join(t.TempDir(), "absent.env")))

	key, err := r.ResolveName("ACME", "m1_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", key)
}

func TestEnvName(t *testing.T) {
	tests := []struct {
		prefix, key, want string
	}{
		{"", "m1_key", "M1_KEY"},
		{"", "openai-key.v2", "OPENAI_KEY_V2"},
		{"unichat_", "m1 key", "UNICHAT_M1_KEY"},
		{"", "clé", "CL_"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EnvName(tt.prefix, tt.key), "%q+%q", tt.prefix, tt.key)
	}
}
