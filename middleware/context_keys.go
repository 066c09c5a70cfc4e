package middleware

// contextKey defines a type for context keys to avoid collisions.
type contextKey string

// Defines context keys used within the application middleware and handlers.
const (
	// UserEmailKey is the context key for the authenticated user's email.
	UserEmailKey contextKey = "userEmail"
)
