package memory

import "github.com/leofalp/unichat/providers/ai"

// Provider stores one conversation history. Implementations must return
// copies from read methods so callers cannot mutate stored messages.
type Provider interface {
	// AppendMessage adds message at the end of the history.
	AppendMessage(message ai.Message)

	// AllMessages returns the whole history in insertion order.
	AllMessages() []ai.Message

	// LastMessages returns up to the last n messages in insertion order.
	LastMessages(n int) []ai.Message

	// Count returns the number of stored messages.
	Count() int

	// Reset drops every message and stores seed in its place.
	Reset(seed ...ai.Message)
}
