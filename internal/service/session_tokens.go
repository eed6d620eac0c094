package service

import (
	"fmt"
	"time"

	"github.com/boddenberg/budgetwise-bfa-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer = "budgetwise-bfa"
	tokenType   = "session"
)

// SessionClaims are the claims carried by a session token.
type SessionClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// SessionTokens signs and validates HS256 bearer tokens bound to a
// budget session id.
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionTokens creates a token issuer. ttl should match the session
// store's TTL so tokens do not outlive their sessions by much.
func NewSessionTokens(secret string, ttl time.Duration) *SessionTokens {
	return &SessionTokens{secret: []byte(secret), ttl: ttl}
}

// TTL returns the token lifetime.
func (t *SessionTokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for sessionID.
func (t *SessionTokens) Issue(sessionID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			Issuer:    tokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Validate parses tokenString and returns the session id it is bound to.
func (t *SessionTokens) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", &domain.ErrUnauthorized{Message: "invalid or expired session token"}
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", &domain.ErrUnauthorized{Message: "invalid session token"}
	}
	if claims.Type != tokenType {
		return "", &domain.ErrUnauthorized{Message: "invalid token type"}
	}
	return claims.Subject, nil
}
