// Package credentials resolves the API key of a provider configuration.
//
// Keys live in the secrets table (secret.json) under the configuration's
// config_name. A [Resolver] can also fall back to environment variables and
// a .env file when the table has no entry:
//
//	r := credentials.NewResolver(store, credentials.WithDotEnv(".env"))
//	key, err := r.ResolveIndex("ACME", 0)
//
// Errors never contain the secret value.
package credentials
