package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"clubpulse/internal/member"
)

var (
	// ErrInvalidCredentials covers every failed login; the response never
	// reveals whether the name or the code was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRateLimited is returned when the login limiter rejects an attempt.
	ErrRateLimited = errors.New("too many login attempts")
)

const sessionTTL = 12 * time.Hour

type service struct {
	members       member.Service
	secret        []byte
	adminPasscode string
	logger        *zap.Logger
	limiter       *rate.Limiter
	now           func() time.Time
}

// Option configures the service.
type Option func(*service)

// WithClock overrides the time source; tests use it to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithLimiter replaces the login rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *service) { s.limiter = l }
}

// NewService creates the authentication service. adminPasscode is the
// Argon2id digest produced by HashPasscode; empty means admin login is
// open, which only makes sense in development.
func NewService(members member.Service, secret, adminPasscode string, logger *zap.Logger, opts ...Option) Service {
	s := &service{
		members:       members,
		secret:        []byte(secret),
		adminPasscode: adminPasscode,
		logger:        logger,
		limiter:       rate.NewLimiter(rate.Every(time.Minute), 5),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login matches the first name case-insensitively and the membership
// number exactly against the member roster.
func (s *service) Login(ctx context.Context, firstName, memberCode string) (Session, error) {
	if !s.limiter.Allow() {
		return Session{}, ErrRateLimited
	}

	m, err := s.members.GetByMembershipNumber(ctx, memberCode)
	if err != nil {
		if errors.Is(err, member.ErrNotFound) {
			s.logger.Warn("login rejected", zap.String("memberCode", memberCode))
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("look up member: %w", err)
	}
	if !strings.EqualFold(strings.TrimSpace(firstName), m.FirstName) {
		s.logger.Warn("login rejected", zap.String("memberCode", memberCode))
		return Session{}, ErrInvalidCredentials
	}

	user := User{
		ID:         m.ID,
		FirstName:  m.FirstName,
		MemberCode: m.MembershipNumber,
	}
	return s.issue(user)
}

func (s *service) LoginAdmin(ctx context.Context, passcode string) (Session, error) {
	if !s.limiter.Allow() {
		return Session{}, ErrRateLimited
	}
	if s.adminPasscode != "" {
		ok, err := VerifyPasscode(passcode, s.adminPasscode)
		if err != nil {
			return Session{}, fmt.Errorf("verify passcode: %w", err)
		}
		if !ok {
			s.logger.Warn("admin login rejected")
			return Session{}, ErrInvalidCredentials
		}
	}

	user := User{
		ID:        uuid.New(),
		FirstName: "Admin",
		IsAdmin:   true,
	}
	return s.issue(user)
}

// issue signs a session token for the user.
func (s *service) issue(user User) (Session, error) {
	now := s.now()
	claims := Claims{
		FirstName:  user.FirstName,
		MemberCode: user.MemberCode,
		IsAdmin:    user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{User: user, Token: token}, nil
}

func (s *service) Verify(token string) (User, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return User{}, ErrInvalidCredentials
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	return User{
		ID:         id,
		FirstName:  claims.FirstName,
		MemberCode: claims.MemberCode,
		IsAdmin:    claims.IsAdmin,
	}, nil
}
