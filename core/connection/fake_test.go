package connection

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leofalp/unichat/core/apierr"
	"github.com/leofalp/unichat/core/config"
	"github.com/leofalp/unichat/providers/ai"
)

const acmeProviders = `{
	"ACME": [{
		"config_name": "m1_key",
		"model_name": "m1",
		"model_url": "http://x",
		"init_config_msg": "hi",
		"api_supported": ["openai"],
		"api_endpoints": {"openai": "http://x/v1"}
	}],
	"REST": [
		{"config_name": "rest_key", "model_name": "r1", "api_supported": ["requests"], "api_endpoints": {"requests": "http://r/chat"}},
		{"config_name": "blank_key", "model_name": "r2", "api_supported": ["requests"], "api_endpoints": {"requests": "http://r/chat"}},
		{"config_name": "absent_key", "model_name": "r3", "api_supported": ["requests"], "api_endpoints": {"requests": "http://r/chat"}},
		{"config_name": "rest_key", "model_name": "r4", "api_supported": ["requests", "huggingface_hub"], "api_endpoints": {"requests": "http://r/chat"}}
	]
}`

const acmeSecrets = `{"m1_key": "sk-test", "rest_key": "sk-rest", "blank_key": "   "}`

// fakeTransport records calls and replays a canned reply or error.
type fakeTransport struct {
	mu         sync.Mutex
	baseURL    string
	apiKey     string
	model      string
	reply      *ai.ChatResponse
	err        error
	calls      [][]ai.Message
	closeCalls int
	connect    time.Duration
	read       time.Duration
}

func (f *fakeTransport) SendChat(_ context.Context, messages []ai.Message) (*ai.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func (f *fakeTransport) ModelName() string { return f.model }

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closeCalls++
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) SetTimeout(connect, read time.Duration) error {
	if connect <= 0 || read <= 0 {
		return apierr.New(apierr.ErrInvalidParameter, "fake.SetTimeout", "timeouts must be positive")
	}
	f.connect, f.read = connect, read
	return nil
}

func (f *fakeTransport) Timeout() (time.Duration, time.Duration) { return f.connect, f.read }

func (f *fakeTransport) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTransport) closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeCalls
}

// fixture wires a manager to an in-memory catalog and a private registry
// whose "openai" constructor hands out fakeTransports.
type fixture struct {
	store      *config.Store
	registry   *ai.Registry
	ctor       ai.Constructor
	transports []*fakeTransport
	reply      *ai.ChatResponse
	sendErr    error
	logs       *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store: config.NewStore(fstest.MapFS{
			"providers.json": {Data: []byte(acmeProviders)},
			"secret.json":    {Data: []byte(acmeSecrets)},
		}),
		registry: ai.NewRegistry(),
		reply:    reply("hello back"),
		logs:     &bytes.Buffer{},
	}

	f.ctor = func(baseURL, apiKey, model string) (ai.Transport, error) {
		if err := ai.ValidateParams("fake.New", baseURL, apiKey, model); err != nil {
			return nil, err
		}
		tr := &fakeTransport{baseURL: baseURL, apiKey: apiKey, model: model, reply: f.reply, err: f.sendErr}
		f.transports = append(f.transports, tr)
		return tr, nil
	}
	require.NoError(t, f.registry.Register(ai.APITypeOpenAI, f.ctor))
	return f
}

func (f *fixture) manager(opts ...Option) *Manager {
	logger := slog.New(slog.NewJSONHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	base := []Option{WithRegistry(f.registry), WithLogger(logger)}
	return NewManager(f.store, append(base, opts...)...)
}

func (f *fixture) configured(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	m := f.manager(opts...)
	_, err := m.Configure("ACME", 0, ai.APITypeOpenAI)
	require.NoError(t, err)
	return m
}

func reply(content string) *ai.ChatResponse {
	return &ai.ChatResponse{
		ID:     "resp-1",
		Object: ai.DefaultObject,
		Model:  "m1",
		Choices: []ai.Choice{{
			Message:      ai.NewMessage(ai.RoleAssistant, content),
			FinishReason: "stop",
		}},
		Usage: &ai.Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errBoom = errors.New("boom")
