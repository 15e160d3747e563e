package ports

// TokenValidator decides whether a presented bearer token is acceptable.
// Implementations must be safe for concurrent use.
type TokenValidator interface {
	Validate(token string) bool
}
