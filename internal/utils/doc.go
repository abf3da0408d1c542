// Package utils provides shared low-level helpers used by the transports:
// string truncation for error snippets, JSON decoding with an optional
// jsonrepair pass, and HTML body detection and conversion to Markdown text.
//
// Key entry points: [TruncateString], [DecodeJSON], [LooksLikeHTML] and
// [HTMLToText].
package utils
