package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/leofalp/unichat/core/apierr"
	"github.com/leofalp/unichat/internal/utils"
	"github.com/leofalp/unichat/providers/ai"
)

// snippetLength caps how much of a response body ends up in an error.
const snippetLength = 500

// convertResponse turns a raw HTTP answer into the normalized schema.
func (t *Transport) convertResponse(status int, contentType string, body []byte) (*ai.ChatResponse, error) {
	if status != http.StatusOK {
		return nil, apierr.New(apierr.ErrAPIClient, "rest.SendChat",
			"API request failed with status %d: %s", status, errorMessage(contentType, body))
	}

	resp, err := utils.DecodeJSON[ai.ChatResponse](body, t.repairJSON)
	if err != nil {
		return nil, apierr.Wrap(apierr.ErrResponseConversion, "rest.SendChat", err,
			"failed to parse JSON response. Response text: %s", utils.TruncateString(string(body), snippetLength))
	}

	for _, c := range resp.Choices {
		if !c.Message.Role.Valid() {
			return nil, apierr.New(apierr.ErrResponseConversion, "rest.SendChat",
				"failed to convert response: choice %d has unsupported role %q", c.Index, c.Message.Role)
		}
	}
	if resp.Object == "" {
		resp.Object = ai.DefaultObject
	}

	return &resp, nil
}

// errorMessage extracts a human readable message from an error body: the
// error.message field, an error string, the whole JSON document, or a
// truncated text rendering of a non-JSON body.
func errorMessage(contentType string, body []byte) string {
	var doc any
	if err := json.Unmarshal(body, &doc); err == nil {
		if obj, ok := doc.(map[string]any); ok {
			switch e := obj["error"].(type) {
			case map[string]any:
				if msg, ok := e["message"].(string); ok && msg != "" {
					return msg
				}
			case string:
				if e != "" {
					return e
				}
			}
		}
		return utils.TruncateString(utils.JSONToString(doc), snippetLength)
	}

	text := string(body)
	if utils.LooksLikeHTML(contentType, text) {
		text = utils.HTMLToText(text)
	}
	return utils.TruncateString(strings.TrimSpace(text), snippetLength)
}
