package observability

// Semantic conventions for structured log attributes.
// These constants define standard attribute names to ensure consistency
// across different components of the system.

// --- Provider Configuration Attributes ---

const (
	// AttrProvider is the provider name as it appears in providers.json
	AttrProvider = "provider"

	// AttrConfigIndex is the index of the selected provider configuration
	AttrConfigIndex = "config.index"

	// AttrConfigFile is the resource identity of a configuration file
	AttrConfigFile = "config.file"

	// AttrConfigKind is the kind of configuration resource (providers, secrets, defaults)
	AttrConfigKind = "config.kind"

	// AttrAPIType is the wire-protocol family (openai, requests, huggingface_hub)
	AttrAPIType = "api.type"

	// AttrCredentialSource tells where a credential was found (secrets, env, dotenv).
	// Never log the credential itself.
	AttrCredentialSource = "credential.source" // #nosec G101 -- Not a credential, names its origin

	// AttrCredentialRef is the secrets table key of a credential (config_name)
	AttrCredentialRef = "credential.ref"
)

// --- LLM Attributes ---

const (
	// AttrLLMModel is the model identifier (e.g., "gpt-4o-mini")
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMResponseID is the unique response identifier from the provider
	AttrLLMResponseID = "llm.response.id"

	// AttrLLMFinishReason is the reason the generation finished
	AttrLLMFinishReason = "llm.finish_reason"

	// AttrLLMTokensTotal is the total number of tokens
	AttrLLMTokensTotal = "llm.tokens.total" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Session Attributes ---

const (
	// AttrSessionID is the caller-visible session identifier
	AttrSessionID = "session.id"

	// AttrSessionKey is the random correlation key of a session
	AttrSessionKey = "session.key"

	// AttrSessionHistoryLen is the number of messages in the session history
	AttrSessionHistoryLen = "session.history_len"

	// AttrMessageLength is the length of the message content
	AttrMessageLength = "message.length"
)

// --- HTTP Attributes ---

const (
	// AttrHTTPTimeoutConnect is the connect timeout applied to a transport
	AttrHTTPTimeoutConnect = "http.timeout.connect"

	// AttrHTTPTimeoutRead is the read timeout applied to a transport
	AttrHTTPTimeoutRead = "http.timeout.read"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrErrorType is the error kind from the apierr taxonomy
	AttrErrorType = "error.type"

	// AttrDuration is the operation duration
	AttrDuration = "duration"
)
