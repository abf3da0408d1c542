// Package ai defines the shared, provider-agnostic types and interfaces used
// by every transport implementation (OpenAI-compatible, generic REST, ...).
// Each transport's conversion layer maps these types to its own wire format,
// keeping sessions and configuration decoupled from backend details.
//
// The central interface is [Transport]. Conversations are expressed as
// [Message] slices and every backend answers with a normalized
// [ChatResponse]. Transports register a [Constructor] for their [APIType] in a
// [Registry]; [DefaultRegistry] is populated by the init functions of the
// transport packages, so importing a transport package (or
// providers/ai/all) is enough to make it buildable:
//
//	import _ "github.com/leofalp/unichat/providers/ai/all"
//
//	t, err := ai.Build(ai.APITypeOpenAI, "https://api.openai.com/v1", key, "gpt-4o-mini")
package ai
