// Package auth provides OAuth login against the external identity provider
// and JWT session token management.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session token lifetime. Members re-authenticate through the identity
// provider when the session expires; there is no refresh flow.
const SessionTokenExpiry = 24 * time.Hour

// DefaultLeeway tolerates small clock skew during validation.
const DefaultLeeway = 30 * time.Second

// Token errors.
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrEmptyMemberID = errors.New("member ID cannot be empty")
)

// SessionClaims are the JWT claims for a member session.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	Nickname string `json:"nickname,omitempty"`
}

// SessionService mints and validates member session tokens. It supports
// dual-key rotation: tokens are signed with the current secret but can be
// validated with either the current or the previous secret.
type SessionService struct {
	currentSecret  []byte
	previousSecret []byte
	leeway         time.Duration
	now            func() time.Time
}

// NewSessionService creates a SessionService signing with secret.
func NewSessionService(secret string) *SessionService {
	return &SessionService{
		currentSecret: []byte(secret),
		leeway:        DefaultLeeway,
		now:           time.Now,
	}
}

// WithPreviousSecret enables validation of tokens signed with the prior
// secret during a rotation window.
func (s *SessionService) WithPreviousSecret(secret string) *SessionService {
	s.previousSecret = []byte(secret)
	return s
}

// Issue mints a session token for a member.
func (s *SessionService) Issue(memberID, email, nickname string) (string, error) {
	if memberID == "" {
		return "", ErrEmptyMemberID
	}

	now := s.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   memberID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTokenExpiry)),
		},
		Email:    email,
		Nickname: nickname,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.currentSecret)
}

// Validate parses and validates a session token, trying the current secret
// first and the previous secret if rotation is in progress.
func (s *SessionService) Validate(tokenString string) (*SessionClaims, error) {
	claims, err := s.validateWith(tokenString, s.currentSecret)
	if err == nil {
		return claims, nil
	}
	if errors.Is(err, ErrExpiredToken) || s.previousSecret == nil {
		return nil, err
	}
	return s.validateWith(tokenString, s.previousSecret)
}

func (s *SessionService) validateWith(tokenString string, secret []byte) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return secret, nil
		},
		jwt.WithLeeway(s.leeway),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
