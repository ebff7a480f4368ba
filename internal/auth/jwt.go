// Package auth provides the Google OAuth2 flow, the signed session cookie,
// and the middleware that loads the server-side session for each request.
//
// SESSION MODEL:
// The browser never holds OAuth tokens. It holds a single HttpOnly cookie
// containing an HS256 JWT whose subject is the ID of a server-side session
// row. On every request the middleware validates the JWT, looks the session
// up in the store, and puts the *model.UserSession in the request context.
// Logging out deletes the row — the cookie becomes a dangling reference even
// if it hasn't expired yet.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the name of the cookie carrying the session JWT.
const SessionCookie = "token"

// SessionTTL is how long a session cookie stays valid. Long enough to cover
// a study sitting; the server-side row outlives it and is only removed on
// logout.
const SessionTTL = 24 * time.Hour

// TokenService signs and validates the session JWTs.
//
// The same HMAC secret is used for both operations. It must be at least 16
// characters; generate one with `openssl rand -hex 32`.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

type claims struct {
	jwt.RegisteredClaims
}

// Generate creates a signed token whose subject is the given session ID,
// valid for SessionTTL.
func (s *TokenService) Generate(sessionID string) (string, error) {
	return s.GenerateWithDuration(sessionID, SessionTTL)
}

// GenerateWithDuration creates a token with a custom expiry. Used by tests to
// exercise the expired-token path.
func (s *TokenService) GenerateWithDuration(sessionID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    "studybuddy",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the session ID.
//
// The jwt library checks signature, expiry, and issuer; pinning the accepted
// methods to HS256 prevents algorithm-confusion tokens from being accepted.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer("studybuddy"),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
