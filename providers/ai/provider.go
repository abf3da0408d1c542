package ai

import (
	"context"
	"strings"
	"time"

	"github.com/leofalp/unichat/core/apierr"
	"github.com/leofalp/unichat/internal/utils"
)

// Transport is the contract every backend implementation must satisfy. It
// covers one request/response round trip in the normalized schema plus
// resource cleanup.
type Transport interface {
	// SendChat converts messages to the backend wire format, performs the
	// call and converts the result back. Returns an error if the call fails,
	// the context is cancelled, or the response cannot be decoded.
	SendChat(ctx context.Context, messages []Message) (*ChatResponse, error)

	// ModelName returns the model every request is sent for.
	ModelName() string

	// Close releases network resources. It is safe to call more than once.
	Close() error
}

// TimeoutSetter is an optional interface for transports with configurable
// connect and read timeouts. Callers detect it via type assertion.
type TimeoutSetter interface {
	// SetTimeout validates both values are strictly positive and makes them
	// effective for the next request.
	SetTimeout(connect, read time.Duration) error

	// Timeout returns the current (connect, read) pair.
	Timeout() (connect, read time.Duration)
}

// Constructor builds a transport bound to one endpoint, key and model.
type Constructor func(baseURL, apiKey, modelName string) (Transport, error)

// ValidateParams checks the three constructor arguments shared by every
// transport and names every empty one in the returned error.
func ValidateParams(op, baseURL, apiKey, modelName string) error {
	var empty []string
	if utils.IsBlank(baseURL) {
		empty = append(empty, "base_url")
	}
	if utils.IsBlank(apiKey) {
		empty = append(empty, "api_key")
	}
	if utils.IsBlank(modelName) {
		empty = append(empty, "model_name")
	}
	if len(empty) > 0 {
		return apierr.New(apierr.ErrInvalidParameter, op,
			"%s must be provided and non-empty", strings.Join(empty, ", "))
	}
	return nil
}

// ValidateMessages rejects a conversation containing a role outside
// system/user/assistant.
func ValidateMessages(op string, messages []Message) error {
	for i, m := range messages {
		if !m.Role.Valid() {
			return apierr.New(apierr.ErrInvalidParameter, op,
				"message %d has unsupported role %q (allowed: system, user, assistant)", i, m.Role)
		}
	}
	return nil
}
