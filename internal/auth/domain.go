package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// User is the authenticated identity carried through a request.
type User struct {
	ID         uuid.UUID `json:"id"`
	FirstName  string    `json:"firstName"`
	MemberCode string    `json:"memberCode,omitempty"`
	IsAdmin    bool      `json:"isAdmin"`
}

// Claims is the JWT payload for a session token.
type Claims struct {
	FirstName  string `json:"firstName"`
	MemberCode string `json:"memberCode,omitempty"`
	IsAdmin    bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Session pairs a verified user with their signed token.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
