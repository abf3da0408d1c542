package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/unichat/core/apierr"
)

func TestChatResponse_ContentAndRole(t *testing.T) {
	tests := []struct {
		name        string
		response    *ChatResponse
		wantContent string
		wantRole    MessageRole
	}{
		{
			name:     "nil response",
			response: nil,
		},
		{
			name:     "no choices",
			response: &ChatResponse{ID: "x"},
		},
		{
			name: "first choice wins",
			response: &ChatResponse{Choices: []Choice{
				{Index: 0, Message: Message{Role: RoleAssistant, Content: "first"}},
				{Index: 1, Message: Message{Role: RoleAssistant, Content: "second"}},
			}},
			wantContent: "first",
			wantRole:    RoleAssistant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantContent, tt.response.Content())
			assert.Equal(t, tt.wantRole, tt.response.Role())
		})
	}
}

func TestChatResponse_DecodesNormalizedSchema(t *testing.T) {
	body := `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1700000000,
		"model": "m1",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "hi", "name": "bot"}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 3, "completion_tokens": 1, "total_tokens": 4},
		"system_fingerprint": "fp_1"
	}`

	var resp ChatResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	assert.Equal(t, "hi", resp.Content())
	assert.Equal(t, "bot", resp.Choices[0].Message.Name)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 4, resp.Usage.TotalTokens)
	assert.Equal(t, "fp_1", resp.SystemFingerprint)
}

func TestMessageRole_Valid(t *testing.T) {
	for _, r := range []MessageRole{RoleSystem, RoleUser, RoleAssistant} {
		assert.True(t, r.Valid(), "role %q", r)
	}
	for _, r := range []MessageRole{"tool", "", "USER"} {
		assert.False(t, r.Valid(), "role %q", r)
	}
}

func TestValidateParams_NamesEveryEmptyField(t *testing.T) {
	err := ValidateParams("test", "", "  ", "")
	require.ErrorIs(t, err, apierr.ErrInvalidParameter)
	for _, field := range []string{"base_url", "api_key", "model_name"} {
		assert.Contains(t, err.Error(), field)
	}

	assert.NoError(t, ValidateParams("test", "http://x", "k", "m"))
}

func TestValidateMessages_RejectsUnknownRole(t *testing.T) {
	msgs := []Message{
		NewMessage(RoleSystem, "be nice"),
		{Role: "tool", Content: "42"},
	}

	err := ValidateMessages("test", msgs)
	require.ErrorIs(t, err, apierr.ErrInvalidParameter)
	assert.Contains(t, err.Error(), `"tool"`)
}

func TestParseAPIType(t *testing.T) {
	got, err := ParseAPIType(" openai ")
	require.NoError(t, err)
	assert.Equal(t, APITypeOpenAI, got)

	_, err = ParseAPIType("grpc")
	assert.Error(t, err)
}
