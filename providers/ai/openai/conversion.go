package openai

import (
	gptLib "github.com/sashabaranov/go-openai"

	"github.com/leofalp/unichat/providers/ai"
)

/*
	REQUEST
*/

// requestFromGeneric maps the normalized conversation to an SDK request.
// Roles map 1:1; validation happens before this point.
func requestFromGeneric(model string, messages []ai.Message) gptLib.ChatCompletionRequest {
	req := gptLib.ChatCompletionRequest{
		Model:    model,
		Messages: make([]gptLib.ChatCompletionMessage, 0, len(messages)),
	}

	for _, m := range messages {
		req.Messages = append(req.Messages, gptLib.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
			Name:    m.Name,
		})
	}

	return req
}

/*
	RESPONSE
*/

func responseToGeneric(resp gptLib.ChatCompletionResponse) *ai.ChatResponse {
	out := &ai.ChatResponse{
		ID:                resp.ID,
		Object:            resp.Object,
		Created:           resp.Created,
		Model:             resp.Model,
		SystemFingerprint: resp.SystemFingerprint,
		Choices:           make([]ai.Choice, 0, len(resp.Choices)),
	}
	if out.Object == "" {
		out.Object = ai.DefaultObject
	}

	for _, c := range resp.Choices {
		out.Choices = append(out.Choices, ai.Choice{
			Index: c.Index,
			Message: ai.Message{
				Role:    ai.MessageRole(c.Message.Role),
				Content: c.Message.Content,
				Name:    c.Message.Name,
			},
			FinishReason: string(c.FinishReason),
		})
	}

	// The SDK decodes usage into a value struct, so an all-zero value means
	// the backend did not report it.
	if u := resp.Usage; u.PromptTokens != 0 || u.CompletionTokens != 0 || u.TotalTokens != 0 {
		out.Usage = &ai.Usage{
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
			TotalTokens:      u.TotalTokens,
		}
	}

	return out
}
