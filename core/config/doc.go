// Package config loads the three JSON configuration resources of unichat
// (providers.json, secret.json, defaults.json) through an io/fs filesystem
// and answers the lookups the connection layer needs.
//
// A [Store] parses each resource at most once and keeps the result until
// [Store.ClearCache]; [Watcher] calls ClearCache when a file in a directory
// store changes. The provider catalog is validated on load: every
// configuration needs a model_name, api_supported may only name known api
// types, and every api_endpoints key must be listed in api_supported.
//
// Lookup misses return apierr.ErrNotFound errors listing the valid
// alternatives; unreadable or invalid files return apierr.ErrConfigLoad
// errors naming the file.
package config
