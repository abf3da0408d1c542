// Package slogobs provides a log/slog handler that can emit compact, pretty,
// or JSON output, and a [New] constructor returning a ready *slog.Logger.
// Output format and log level default to the UNICHAT_LOG_FORMAT and
// UNICHAT_LOG_LEVEL environment variables and can be tuned with [WithFormat],
// [WithLevel], [WithOutput] and [WithColors].
//
// Attributes whose key names a credential (api_key, secret_api_key, ...) are
// always rendered as [Redacted].
package slogobs
