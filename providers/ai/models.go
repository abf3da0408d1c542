package ai

/*
	##### TRANSPORT INPUT #####
*/

// Message represents a single message in a conversation
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
	Name    string      `json:"name,omitempty"` // Optional sender name
}

// NewMessage builds a message with the given role and content.
func NewMessage(role MessageRole, content string) Message {
	return Message{Role: role, Content: content}
}

/*
	##### TRANSPORT OUTPUT #####
*/

// Usage reports token counts. Every field is optional on the wire; zero means
// the backend did not report it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// Choice is one generated alternative of a chat completion.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"` // "stop", "length", "content_filter", ...
}

// ChatResponse is the normalized chat completion every transport returns,
// whatever the wire format of its backend.
type ChatResponse struct {
	ID                string   `json:"id,omitempty"`
	Object            string   `json:"object,omitempty"`
	Created           int64    `json:"created,omitempty"`
	Model             string   `json:"model,omitempty"`
	Choices           []Choice `json:"choices,omitempty"`
	Usage             *Usage   `json:"usage,omitempty"`
	SystemFingerprint string   `json:"system_fingerprint,omitempty"`
}

// DefaultObject is the object name assumed when a backend omits it.
const DefaultObject = "chat.completion"

// Content returns the content of the first choice, or "" when there is none.
func (r *ChatResponse) Content() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// Role returns the role of the first choice, or "" when there is none.
func (r *ChatResponse) Role() MessageRole {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Role
}

/*
	##### ENUMS #####
*/

// MessageRole represents the role of a message; compatible with string
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions/configuration
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Model response
)

// Valid reports whether r is one of the supported roles.
func (r MessageRole) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}
