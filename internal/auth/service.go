package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/abduss/photocat/internal/config"
)

const (
	issuer   = "photocat"
	audience = "photocat-api"
)

// Service issues and validates operator tokens.
type Service struct {
	cfg     config.AuthConfig
	nowFunc func() time.Time
	parser  *jwt.Parser
}

// NewService creates a Service from the auth configuration.
func NewService(cfg config.AuthConfig) *Service {
	s := &Service{cfg: cfg, nowFunc: time.Now}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.nowFunc() }),
	)
	return s
}

// Enabled reports whether a secret is configured. Without one the HTTP
// surface runs unauthenticated.
func (s *Service) Enabled() bool {
	return s.cfg.TokenSecret != ""
}

// Issue signs a token for the named operator.
func (s *Service) Issue(subject string) (Token, error) {
	if !s.Enabled() {
		return Token{}, ErrSecretMissing
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return Token{}, ErrInvalidSubject
	}

	now := s.nowFunc()
	expiresAt := now.Add(s.cfg.TokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.TokenSecret))
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	return Token{Value: signed, Subject: subject, ExpiresAt: expiresAt}, nil
}

// Validate verifies the token signature and extracts operator claims.
func (s *Service) Validate(tokenString string) (OperatorClaims, error) {
	if !s.Enabled() || strings.TrimSpace(tokenString) == "" {
		return OperatorClaims{}, ErrUnauthorized
	}

	var claims jwt.RegisteredClaims
	parsed, err := s.parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.TokenSecret), nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return OperatorClaims{}, ErrUnauthorized
	}

	out := OperatorClaims{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
