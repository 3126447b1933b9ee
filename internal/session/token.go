package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

const tokenIssuer = "bloodbridge-web"

// Claims is the payload of the browser session cookie
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies session cookies
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens creates a signer. A zero ttl issues tokens without expiry.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

// NewID returns a fresh session id
func NewID() string {
	return ulid.Make().String()
}

// Issue creates a signed token for the session
func (t *Tokens) Issue(sessionID string, now time.Time) (string, error) {
	if len(t.secret) == 0 {
		return "", fmt.Errorf("session secret not initialized")
	}

	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates a token and returns its session id
func (t *Tokens) Parse(tokenString string) (string, error) {
	if len(t.secret) == 0 {
		return "", fmt.Errorf("session secret not initialized")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	if _, err := ulid.ParseStrict(claims.SessionID); err != nil {
		return "", errors.Join(fmt.Errorf("invalid session id"), err)
	}
	return claims.SessionID, nil
}
