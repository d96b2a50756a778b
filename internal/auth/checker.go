package auth

import "context"

var _ Checker = (*LoginChecker)(nil)

// Checker resolves a session token to the id of the logged-in user.
type Checker interface {
	UserID(ctx context.Context, token string) (int, error)
}
