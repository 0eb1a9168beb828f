package models

// ContextKey is the type for keys of values stored in the request context.
type ContextKey string

// DBContextURL is the context key for the base URL the API is served on.
const DBContextURL ContextKey = "ledgerlane-url"
