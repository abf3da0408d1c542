package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	gptLib "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/unichat/core/apierr"
	"github.com/leofalp/unichat/providers/ai"
)

func TestNewRejectsEmptyParams(t *testing.T) {
	_, err := New("", "", "m1")
	assert.ErrorIs(t, err, apierr.ErrInvalidParameter)
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	for _, baseURL := range []string{"api.openai.com/v1", "::not a url", "/v1"} {
		_, err := New(baseURL, "key", "m1")
		assert.ErrorIs(t, err, apierr.ErrInvalidParameter, "New(%q)", baseURL)
	}
}

func TestNewTrimsTrailingSlash(t *testing.T) {
	tr, err := New("https://api.example.com/v1/", "key", "m1")
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/v1", tr.BaseURL())
	assert.Equal(t, "m1", tr.ModelName())
}

func TestSendChatWithValidResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "org-1", r.Header.Get("OpenAI-Organization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
				Name    string `json:"name"`
			} `json:"messages"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "gpt-test", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "user", req.Messages[1].Role)
			assert.Equal(t, "alice", req.Messages[1].Name)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-test",
			"system_fingerprint": "fp_abc",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Paris."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
		}`))
	}))
	defer server.Close()

	tr, err := New(server.URL+"/v1", "test-key", "gpt-test", WithOrganization("org-1"), WithHTTPClient(server.Client()))
	require.NoError(t, err)

	user := ai.NewMessage(ai.RoleUser, "Capital of France?")
	user.Name = "alice"
	resp, err := tr.SendChat(context.Background(), []ai.Message{
		ai.NewMessage(ai.RoleSystem, "be brief"),
		user,
	})
	require.NoError(t, err)

	assert.Equal(t, "Paris.", resp.Content())
	assert.Equal(t, ai.RoleAssistant, resp.Role())
	assert.Equal(t, "stop", resp.Choices[0].FinishReason)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 12, resp.Usage.TotalTokens)
	assert.Equal(t, "chatcmpl-1", resp.ID)
	assert.EqualValues(t, 1700000000, resp.Created)
	assert.Equal(t, "fp_abc", resp.SystemFingerprint)
}

func TestSendChatPropagatesSDKErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid api key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	tr, err := New(server.URL, "bad-key", "gpt-test")
	require.NoError(t, err)

	_, err = tr.SendChat(context.Background(), []ai.Message{ai.NewMessage(ai.RoleUser, "hi")})

	var apiErr *gptLib.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatusCode)
	assert.Equal(t, "invalid api key", apiErr.Message)
	assert.False(t, apierr.IsKnown(err), "SDK errors are not rewrapped into the taxonomy")
}

func TestSendChatRejectsUnknownRole(t *testing.T) {
	tr, err := New("http://127.0.0.1:1", "key", "m1")
	require.NoError(t, err)

	_, err = tr.SendChat(context.Background(), []ai.Message{{Role: "tool", Content: "x"}})
	assert.ErrorIs(t, err, apierr.ErrInvalidParameter)
}

func TestCloseIsIdempotent(t *testing.T) {
	tr, err := New("http://127.0.0.1:1", "key", "m1")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, tr.Close(), "close %d", i)
	}

	_, err = tr.SendChat(context.Background(), []ai.Message{ai.NewMessage(ai.RoleUser, "hi")})
	assert.ErrorIs(t, err, apierr.ErrAPIClient)
}

func TestRegisteredInDefaultRegistry(t *testing.T) {
	require.True(t, ai.DefaultRegistry.Has(ai.APITypeOpenAI))

	tr, err := ai.Build(ai.APITypeOpenAI, "https://api.example.com/v1", "key", "m1")
	require.NoError(t, err)
	assert.IsType(t, &Transport{}, tr)
}

func TestResponseToGenericDefaults(t *testing.T) {
	resp := responseToGeneric(gptLib.ChatCompletionResponse{ID: "x"})

	assert.Equal(t, ai.DefaultObject, resp.Object)
	assert.Nil(t, resp.Usage, "no usage when the backend reports none")
	assert.Empty(t, resp.Content())
}
