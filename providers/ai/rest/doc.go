// Package rest implements the [ai.Transport] contract for generic
// JSON-over-HTTP chat endpoints, registered under [ai.APITypeRequests].
//
// Every call POSTs {"messages": [...], "model": "..."} to the configured
// endpoint URL with bearer authentication, using a lazily created
// github.com/go-resty/resty/v2 client. A 200 answer must follow the normalized
// response schema; anything else becomes an apierr.ErrAPIClient error carrying
// the HTTP status and the best message found in the body. HTML error pages
// from gateways are rendered to text first.
//
// Connect and read timeouts default to 30s and 60s and can be changed at any
// time with [Transport.SetTimeout].
package rest
