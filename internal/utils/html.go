package utils

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// LooksLikeHTML reports whether a response body is an HTML document, going by
// its Content-Type header first and its leading bytes otherwise. Gateways and
// reverse proxies commonly answer errors with an HTML page.
func LooksLikeHTML(contentType string, body string) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(body))
	if len(head) > 64 {
		head = head[:64]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

// HTMLToText converts an HTML document into Markdown text. When conversion
// fails the original body is returned unchanged.
func HTMLToText(body string) string {
	markdown, err := htmltomarkdown.ConvertString(body)
	if err != nil {
		return body
	}
	return strings.TrimSpace(markdown)
}
