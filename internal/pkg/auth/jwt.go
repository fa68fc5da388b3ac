package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// TokenConfig defines session cookie signing settings
type TokenConfig struct {
	SecretKey string
	Issuer    string
}

// SessionTokenService signs session ids into cookie values so a forged or
// tampered cookie is rejected before the session store is consulted.
type SessionTokenService struct {
	config TokenConfig
	now    func() time.Time
}

// NewSessionTokenService creates a new SessionTokenService
func NewSessionTokenService(config TokenConfig) *SessionTokenService {
	return &SessionTokenService{
		config: config,
		now:    time.Now,
	}
}

// Sign returns a HS256 token carrying sessionID as its jti
func (s *SessionTokenService) Sign(sessionID string, expiresAt time.Time) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Issuer:    s.config.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns the session id it carries
func (s *SessionTokenService) Parse(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuer(s.config.Issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.ID == "" {
		return "", ErrInvalidToken
	}
	return claims.ID, nil
}
