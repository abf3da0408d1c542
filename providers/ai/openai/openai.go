package openai

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	gptLib "github.com/sashabaranov/go-openai"

	"github.com/leofalp/unichat/core/apierr"
	"github.com/leofalp/unichat/providers/ai"
)

func init() {
	ai.MustRegister(ai.APITypeOpenAI, func(baseURL, apiKey, modelName string) (ai.Transport, error) {
		return New(baseURL, apiKey, modelName)
	})
}

// Option customizes a [Transport] at construction time.
type Option func(*Transport)

// WithHTTPClient sets a custom HTTP client. The transport does not own it, so
// Close leaves its connections alone.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Transport) {
		if client != nil {
			t.httpClient = client
			t.ownsClient = false
		}
	}
}

// WithOrganization sets the OpenAI-Organization header sent with every request.
func WithOrganization(org string) Option {
	return func(t *Transport) {
		t.organization = org
	}
}

// Transport talks to an OpenAI-compatible chat completions endpoint.
type Transport struct {
	baseURL      string
	model        string
	organization string

	httpClient *http.Client
	ownsClient bool
	client     *gptLib.Client

	mu     sync.Mutex
	closed bool
}

var _ ai.Transport = (*Transport)(nil)

// New creates a transport for modelName at baseURL, authenticated with apiKey.
// baseURL is the API root (for example https://api.openai.com/v1); the SDK
// appends /chat/completions.
func New(baseURL, apiKey, modelName string, opts ...Option) (*Transport, error) {
	if err := ai.ValidateParams("openai.New", baseURL, apiKey, modelName); err != nil {
		return nil, err
	}

	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, apierr.New(apierr.ErrInvalidParameter, "openai.New",
			"base_url %q is not an absolute URL", baseURL)
	}

	t := &Transport{
		baseURL:    strings.TrimRight(u.String(), "/"),
		model:      modelName,
		httpClient: &http.Client{},
		ownsClient: true,
	}
	for _, opt := range opts {
		opt(t)
	}

	cfg := gptLib.DefaultConfig(apiKey)
	cfg.BaseURL = t.baseURL
	cfg.HTTPClient = t.httpClient
	cfg.OrgID = t.organization
	t.client = gptLib.NewClientWithConfig(cfg)

	return t, nil
}

// ModelName implements ai.Transport.
func (t *Transport) ModelName() string {
	return t.model
}

// BaseURL returns the normalized API root requests are sent to.
func (t *Transport) BaseURL() string {
	return t.baseURL
}

// SendChat implements ai.Transport.
func (t *Transport) SendChat(ctx context.Context, messages []ai.Message) (*ai.ChatResponse, error) {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return nil, apierr.New(apierr.ErrAPIClient, "openai.SendChat", "transport is closed")
	}

	if err := ai.ValidateMessages("openai.SendChat", messages); err != nil {
		return nil, err
	}

	resp, err := t.client.CreateChatCompletion(ctx, requestFromGeneric(t.model, messages))
	if err != nil {
		return nil, err
	}

	return responseToGeneric(resp), nil
}

// Close releases idle connections of the transport-owned HTTP client. It is
// safe to call more than once.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	if t.ownsClient {
		t.httpClient.CloseIdleConnections()
	}
	return nil
}
