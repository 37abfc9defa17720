// Package auth issues and verifies signed access tokens. A valid token
// identifies a named user; requests without one run as guest.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrTokenExpired = errors.New("auth: token expired")
	ErrNoSecret     = errors.New("auth: signing secret not configured")
)

// Claims are the payload carried inside an access token.
type Claims struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Service signs and verifies tokens with a shared secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = 24 * time.Hour

// NewService creates a token service. An empty secret disables signing;
// Issue and Validate then return ErrNoSecret, which callers treat as
// guest access.
func NewService(secret string) *Service {
	return &Service{secret: []byte(secret), ttl: DefaultTokenTTL}
}

// Issue creates a signed access token for a named user.
func (s *Service) Issue(userID, name string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrNoSecret
	}

	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		Name:      name,
		Type:      "access",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}

	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	payload := base64.RawURLEncoding.EncodeToString(claimsJSON)
	return payload + "." + s.sign(payload), nil
}

// Validate parses a token, checks its signature and expiry, and returns
// the claims.
func (s *Service) Validate(token string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, ErrNoSecret
	}

	payload, signature, ok := strings.Cut(token, ".")
	if !ok {
		return nil, ErrInvalidToken
	}

	if !hmac.Equal([]byte(signature), []byte(s.sign(payload))) {
		return nil, ErrInvalidToken
	}

	claimsJSON, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var claims Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return nil, ErrInvalidToken
	}

	if claims.Type != "access" {
		return nil, ErrInvalidToken
	}
	if time.Now().Unix() > claims.ExpiresAt {
		return nil, ErrTokenExpired
	}

	return &claims, nil
}

func (s *Service) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
