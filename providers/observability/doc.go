// Package observability holds the attribute keys used in structured log
// records across unichat, so that every component names the same facts the
// same way (provider, config index, api type, session id, ...). The slog
// handler lives in the slogobs subpackage.
package observability
