package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"support-be/internal/domain"
	svc "support-be/internal/service"
	"support-be/pkg/errors"
	"support-be/pkg/logger"
)

// Service verifies bearer tokens issued by the identity provider. Tokens are
// HS256 JWTs carrying sub/email/name/role claims; the exact issue flow lives
// with the provider and is out of scope here.
type Service struct {
	secret      []byte
	adminEmails map[string]bool
	logger      *logger.Logger
}

// NewService creates a new auth service
func NewService(jwtSecret string, adminEmails []string, log *logger.Logger) svc.AuthService {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		admins[strings.ToLower(email)] = true
	}
	return &Service{
		secret:      []byte(jwtSecret),
		adminEmails: admins,
		logger:      log,
	}
}

// VerifyToken validates a bearer token and returns the verified principal
func (s *Service) VerifyToken(ctx context.Context, token string) (*domain.Principal, error) {
	if token == "" {
		return nil, errors.NewAuthenticationError("Token is required")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))

	if err != nil || !parsed.Valid {
		s.logger.WithError(err).Debug("Token validation failed")
		return nil, errors.NewAuthenticationError("Invalid or expired token")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.NewAuthenticationError("Token has no subject")
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)

	principal := &domain.Principal{
		UserID:  sub,
		Email:   email,
		Name:    name,
		IsAdmin: role == "admin" || s.adminEmails[strings.ToLower(email)],
	}

	s.logger.WithField("user_id", principal.UserID).Debug("Token verified")
	return principal, nil
}
