package rest

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/leofalp/unichat/core/apierr"
	"github.com/leofalp/unichat/providers/ai"
)

const (
	// DefaultConnectTimeout bounds TCP connection establishment.
	DefaultConnectTimeout = 30 * time.Second
	// DefaultReadTimeout bounds every wait for data from the server: the
	// response headers and each read of the body.
	DefaultReadTimeout = 60 * time.Second
)

func init() {
	ai.MustRegister(ai.APITypeRequests, func(baseURL, apiKey, modelName string) (ai.Transport, error) {
		return New(baseURL, apiKey, modelName)
	})
}

// Option customizes a [Transport] at construction time.
type Option func(*Transport)

// WithJSONRepair enables a second decoding attempt through jsonrepair when a
// 200 response carries malformed JSON.
func WithJSONRepair() Option {
	return func(t *Transport) {
		t.repairJSON = true
	}
}

// WithTimeouts overrides the default connect and read timeouts. Non-positive
// values keep the defaults; use [Transport.SetTimeout] to get validation.
func WithTimeouts(connect, read time.Duration) Option {
	return func(t *Transport) {
		if connect > 0 {
			t.connectTimeout = connect
		}
		if read > 0 {
			t.readTimeout = read
		}
	}
}

// Transport posts the conversation as JSON to a single endpoint URL and
// expects the normalized response schema back.
type Transport struct {
	endpoint   string
	apiKey     string
	model      string
	repairJSON bool

	mu             sync.Mutex
	connectTimeout time.Duration
	readTimeout    time.Duration
	client         *resty.Client
	closed         bool
}

var (
	_ ai.Transport     = (*Transport)(nil)
	_ ai.TimeoutSetter = (*Transport)(nil)
)

// requestBody is the wire format sent to the endpoint.
type requestBody struct {
	Messages []wireMessage `json:"messages"`
	Model    string        `json:"model"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// New creates a transport posting to endpoint (the full URL, no path is
// appended) for modelName, authenticated with apiKey.
func New(endpoint, apiKey, modelName string, opts ...Option) (*Transport, error) {
	if err := ai.ValidateParams("rest.New", endpoint, apiKey, modelName); err != nil {
		return nil, err
	}

	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, apierr.New(apierr.ErrInvalidParameter, "rest.New",
			"base_url %q is not an absolute URL", endpoint)
	}

	t := &Transport{
		endpoint:       u.String(),
		apiKey:         apiKey,
		model:          modelName,
		connectTimeout: DefaultConnectTimeout,
		readTimeout:    DefaultReadTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// ModelName implements ai.Transport.
func (t *Transport) ModelName() string {
	return t.model
}

// Endpoint returns the URL requests are posted to.
func (t *Transport) Endpoint() string {
	return t.endpoint
}

// SetTimeout implements ai.TimeoutSetter. An existing HTTP client is
// discarded so the next request is made with the new values.
func (t *Transport) SetTimeout(connect, read time.Duration) error {
	if connect <= 0 {
		return apierr.New(apierr.ErrInvalidParameter, "rest.SetTimeout",
			"connect timeout must be a positive duration, got: %s", connect)
	}
	if read <= 0 {
		return apierr.New(apierr.ErrInvalidParameter, "rest.SetTimeout",
			"read timeout must be a positive duration, got: %s", read)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.connectTimeout = connect
	t.readTimeout = read
	t.discardClientLocked()
	return nil
}

// Timeout implements ai.TimeoutSetter.
func (t *Transport) Timeout() (connect, read time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connectTimeout, t.readTimeout
}

// session returns the lazily created resty client, building it with the
// current timeouts when needed.
func (t *Transport) session() (*resty.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, apierr.New(apierr.ErrAPIClient, "rest.SendChat", "transport is closed")
	}
	if t.client != nil {
		return t.client, nil
	}

	dialer := &net.Dialer{
		Timeout:   t.connectTimeout,
		KeepAlive: 30 * time.Second,
	}
	readTimeout := t.readTimeout
	httpTransport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			return &deadlineConn{Conn: conn, timeout: readTimeout}, nil
		},
		TLSHandshakeTimeout:   t.connectTimeout,
		ResponseHeaderTimeout: t.readTimeout,
		IdleConnTimeout:       readTimeout,
	}

	t.client = resty.NewWithClient(&http.Client{Transport: httpTransport}).
		SetAuthToken(t.apiKey).
		SetDisableWarn(true).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return t.client, nil
}

// hasSession reports whether an HTTP client currently exists.
func (t *Transport) hasSession() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client != nil
}

func (t *Transport) discardClientLocked() {
	if t.client != nil {
		t.client.GetClient().CloseIdleConnections()
		t.client = nil
	}
}

// SendChat implements ai.Transport.
func (t *Transport) SendChat(ctx context.Context, messages []ai.Message) (*ai.ChatResponse, error) {
	if err := ai.ValidateMessages("rest.SendChat", messages); err != nil {
		return nil, err
	}

	client, err := t.session()
	if err != nil {
		return nil, err
	}

	resp, err := client.R().
		SetContext(ctx).
		SetBody(requestFromGeneric(t.model, messages)).
		Post(t.endpoint)
	if err != nil {
		return nil, apierr.Wrap(apierr.ErrAPIClient, "rest.SendChat", err, "request to %s failed", t.endpoint)
	}

	return t.convertResponse(resp.StatusCode(), resp.Header().Get("Content-Type"), resp.Body())
}

// Close releases the HTTP client. It is safe to call more than once; a
// closed transport rejects further requests.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.discardClientLocked()
	t.closed = true
	return nil
}

// deadlineConn restarts the read deadline on every Read and after every
// Write, so a server stalling between two chunks of a response fails the
// request after the read timeout.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

func (c *deadlineConn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	if err == nil {
		err = c.Conn.SetReadDeadline(time.Now().Add(c.timeout))
	}
	return n, err
}

func requestFromGeneric(model string, messages []ai.Message) requestBody {
	body := requestBody{Model: model, Messages: make([]wireMessage, 0, len(messages))}
	for _, m := range messages {
		body.Messages = append(body.Messages, wireMessage{Role: string(m.Role), Content: m.Content, Name: m.Name})
	}
	return body
}
