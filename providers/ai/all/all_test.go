package all

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leofalp/unichat/providers/ai"
)

func TestBuiltinTransportsRegistered(t *testing.T) {
	for _, apiType := range []ai.APIType{ai.APITypeOpenAI, ai.APITypeRequests} {
		assert.True(t, ai.DefaultRegistry.Has(apiType), "%q should be registered", apiType)
	}
	assert.False(t, ai.DefaultRegistry.Has(ai.APITypeHuggingFaceHub), "%q has no built-in transport", ai.APITypeHuggingFaceHub)
}
