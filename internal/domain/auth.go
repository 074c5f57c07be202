package domain

// TokenVerifier verifies a bearer token issued by the auth provider and returns the user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}
