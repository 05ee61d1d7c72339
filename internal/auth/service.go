package auth

import "context"

// Service defines the interface for authentication operations.
type Service interface {
	// Login authenticates a member by first name and membership number.
	Login(ctx context.Context, firstName, memberCode string) (Session, error)
	// LoginAdmin authenticates the shared admin passcode.
	LoginAdmin(ctx context.Context, passcode string) (Session, error)
	// Verify validates a signed token and returns the user it carries.
	Verify(token string) (User, error)
}
