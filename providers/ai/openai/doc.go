// Package openai implements the [ai.Transport] contract for OpenAI-compatible
// chat completion APIs (OpenAI itself, Azure-style gateways, Ollama,
// OpenRouter, vLLM, ...). Requests go through github.com/sashabaranov/go-openai;
// the conversion layer in conversion.go maps the normalized message model to
// the SDK types and back.
//
// Importing the package registers the transport under [ai.APITypeOpenAI] in
// [ai.DefaultRegistry]. Use [New] directly to pass options such as
// [WithHTTPClient] or [WithOrganization].
//
// Errors returned by the SDK (*openai.APIError, *openai.RequestError, network
// errors) are propagated unchanged so callers can inspect them.
package openai
