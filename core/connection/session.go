package connection

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/leofalp/unichat/core/apierr"
	"github.com/leofalp/unichat/internal/utils"
	"github.com/leofalp/unichat/providers/ai"
	"github.com/leofalp/unichat/providers/memory"
	"github.com/leofalp/unichat/providers/observability"
)

// DefaultInitMessage seeds the history on [Session.ClearHistory] when the
// configuration has no init_config_msg.
const DefaultInitMessage = "You are a helpful AI assistant."

// Session is one conversation bound to a transport. Create it with
// [Manager.CreateSession]. A session is not safe for concurrent Send calls.
type Session struct {
	id        string
	key       string
	params    Params
	transport ai.Transport
	history   memory.Provider
	logger    *slog.Logger

	mu      sync.Mutex
	closed  bool
	lastErr error
}

func newSession(id string, params Params, transport ai.Transport, history memory.Provider, logger *slog.Logger) *Session {
	key := uuid.NewString()
	return &Session{
		id:        id,
		key:       key,
		params:    params,
		transport: transport,
		history:   history,
		logger: logger.With(
			slog.String(observability.AttrSessionID, id),
			slog.String(observability.AttrSessionKey, key),
			slog.String(observability.AttrProvider, params.Provider),
			slog.String(observability.AttrLLMModel, params.ModelName),
		),
	}
}

// Send appends message to the history, sends the whole conversation and
// returns the reply of the first choice.
//
// A blank message or a closed session is an error. Any failure of the
// transport is logged and reported as ok == false with a nil error; the user
// message stays in the history and [Session.LastError] returns the cause.
func (s *Session) Send(ctx context.Context, message string) (reply string, ok bool, err error) {
	const op = "connection.Send"

	if utils.IsBlank(message) {
		return "", false, apierr.New(apierr.ErrInvalidParameter, op, "message cannot be empty")
	}
	if s.Closed() {
		return "", false, apierr.New(apierr.ErrAPIClient, op, "session %q is closed", s.id)
	}

	s.history.AppendMessage(ai.NewMessage(ai.RoleUser, message))
	s.logger.Debug("Sending message",
		slog.Int(observability.AttrMessageLength, len(message)),
		slog.Int(observability.AttrSessionHistoryLen, s.history.Count()))

	timer := utils.NewTimer()
	resp, sendErr := s.transport.SendChat(ctx, s.history.AllMessages())
	elapsed := timer.Stop()
	s.setLastError(sendErr)

	if sendErr != nil {
		attrs := []any{
			slog.String(observability.AttrError, sendErr.Error()),
			slog.Duration(observability.AttrDuration, elapsed),
		}
		if kind := apierr.KindOf(sendErr); kind != nil {
			attrs = append(attrs, slog.String(observability.AttrErrorType, kind.Error()))
			s.logger.Warn("API error sending message", attrs...)
		} else {
			s.logger.Error("Unexpected error sending message", attrs...)
		}
		return "", false, nil
	}

	content := resp.Content()
	if content == "" {
		s.logger.Warn("Empty response", slog.Duration(observability.AttrDuration, elapsed))
		return "", false, nil
	}

	s.history.AppendMessage(ai.NewMessage(ai.RoleAssistant, content))

	attrs := []any{
		slog.String(observability.AttrLLMResponseID, resp.ID),
		slog.Duration(observability.AttrDuration, elapsed),
		slog.Int(observability.AttrMessageLength, len(content)),
	}
	if len(resp.Choices) > 0 && resp.Choices[0].FinishReason != "" {
		attrs = append(attrs, slog.String(observability.AttrLLMFinishReason, resp.Choices[0].FinishReason))
	}
	if resp.Usage != nil {
		attrs = append(attrs, slog.Int(observability.AttrLLMTokensTotal, resp.Usage.TotalTokens))
	}
	s.logger.Debug("Message received", attrs...)

	return content, true, nil
}

// LastError returns the transport error absorbed by the last Send, or nil.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) setLastError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// ClearHistory replaces the history with a single system message holding the
// configured init message, or [DefaultInitMessage] when there is none.
func (s *Session) ClearHistory() error {
	if s.Closed() {
		return apierr.New(apierr.ErrAPIClient, "connection.ClearHistory", "session %q is closed", s.id)
	}

	seed := s.params.InitMessage
	if utils.IsBlank(seed) {
		seed = DefaultInitMessage
	}
	s.history.Reset(ai.NewMessage(ai.RoleSystem, seed))
	s.logger.Debug("History cleared")
	return nil
}

// History returns a copy of the conversation.
func (s *Session) History() []ai.Message {
	return s.history.AllMessages()
}

// LastMessages returns a copy of the last n messages of the conversation.
func (s *Session) LastMessages(n int) []ai.Message {
	return s.history.LastMessages(n)
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// ModelName returns the model the session talks to.
func (s *Session) ModelName() string {
	return s.params.ModelName
}

// Params returns the configuration the session was created from.
func (s *Session) Params() Params {
	return s.params
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the transport and clears the history. Further calls are
// no-ops.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.transport.Close()
	s.history.Reset()
	s.logger.Info("Session closed")
	return err
}
