package ai

import (
	"strings"

	"github.com/leofalp/unichat/core/apierr"
)

// APIType identifies the wire-protocol family used to talk to a provider.
type APIType string

const (
	APITypeOpenAI         APIType = "openai"          // OpenAI-compatible chat completions
	APITypeRequests       APIType = "requests"        // Generic JSON-over-HTTP endpoint
	APITypeHuggingFaceHub APIType = "huggingface_hub" // Listed in configs, no built-in transport
)

// KnownAPITypes is the fixed vocabulary accepted in provider configurations.
var KnownAPITypes = []APIType{APITypeHuggingFaceHub, APITypeOpenAI, APITypeRequests}

// Valid reports whether t belongs to [KnownAPITypes].
func (t APIType) Valid() bool {
	for _, known := range KnownAPITypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t APIType) String() string {
	return string(t)
}

// ParseAPIType converts s into an APIType, rejecting values outside the
// vocabulary.
func ParseAPIType(s string) (APIType, error) {
	t := APIType(strings.TrimSpace(s))
	if !t.Valid() {
		return "", apierr.New(apierr.ErrInvalidParameter, "ai.ParseAPIType",
			"unknown api type %q. Known: %s", s, apierr.List(KnownAPITypes))
	}
	return t, nil
}
