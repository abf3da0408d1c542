package connection

import (
	"fmt"
	"log/slog"

	"github.com/leofalp/unichat/internal/utils"
	"github.com/leofalp/unichat/providers/ai"
	"github.com/leofalp/unichat/providers/observability"
)

const redacted = "[REDACTED]"

// Names of the connection parameters, as reported by [Manager.MissingFields].
const (
	FieldProvider     = "provider"
	FieldConfigIndex  = "config_index"
	FieldAPIType      = "api_type"
	FieldEndpointURL  = "endpoint_url"
	FieldModelName    = "model_name"
	FieldInitMessage  = "init_config_msg"
	FieldSecretAPIKey = "secret_api_key"
)

var allFields = []string{
	FieldProvider, FieldConfigIndex, FieldAPIType, FieldEndpointURL,
	FieldModelName, FieldInitMessage, FieldSecretAPIKey,
}

// Params is the resolved connection configuration a session is built from.
// It is handed out by value; the secret is redacted by String, GoString and
// LogValue.
type Params struct {
	Provider     string
	ConfigIndex  int
	APIType      ai.APIType
	EndpointURL  string
	ModelName    string
	InitMessage  string
	SecretAPIKey string
}

func (p Params) String() string {
	return fmt.Sprintf("provider=%s config_index=%d api_type=%s endpoint_url=%s model_name=%s init_config_msg=%q secret_api_key=%s",
		p.Provider, p.ConfigIndex, p.APIType, p.EndpointURL, p.ModelName, p.InitMessage, p.maskedSecret())
}

// GoString keeps %#v from printing the secret.
func (p Params) GoString() string {
	return "connection.Params{" + p.String() + "}"
}

// LogValue implements slog.LogValuer.
func (p Params) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String(observability.AttrProvider, p.Provider),
		slog.Int(observability.AttrConfigIndex, p.ConfigIndex),
		slog.String(observability.AttrAPIType, p.APIType.String()),
		slog.String(observability.AttrLLMEndpoint, p.EndpointURL),
		slog.String(observability.AttrLLMModel, p.ModelName),
		slog.String(FieldSecretAPIKey, p.maskedSecret()),
	)
}

func (p Params) maskedSecret() string {
	if p.SecretAPIKey == "" {
		return ""
	}
	return redacted
}

// missing lists the required fields that are empty. init_config_msg is
// optional: sessions fall back to a generic system prompt.
func (p Params) missing() []string {
	var out []string
	if utils.IsBlank(p.Provider) {
		out = append(out, FieldProvider)
	}
	if p.ConfigIndex < 0 {
		out = append(out, FieldConfigIndex)
	}
	if utils.IsBlank(string(p.APIType)) {
		out = append(out, FieldAPIType)
	}
	if utils.IsBlank(p.EndpointURL) {
		out = append(out, FieldEndpointURL)
	}
	if utils.IsBlank(p.ModelName) {
		out = append(out, FieldModelName)
	}
	if utils.IsBlank(p.SecretAPIKey) {
		out = append(out, FieldSecretAPIKey)
	}
	return out
}
