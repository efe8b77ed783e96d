package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-be/pkg/logger"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyToken_ValidToken(t *testing.T) {
	svc := NewService(testSecret, nil, logger.NewNop())

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "user-1",
		"email": "alice@example.com",
		"name":  "Alice",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	principal, err := svc.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.UserID)
	assert.Equal(t, "alice@example.com", principal.Email)
	assert.Equal(t, "Alice", principal.Name)
	assert.False(t, principal.IsAdmin)
}

func TestVerifyToken_AdminByRole(t *testing.T) {
	svc := NewService(testSecret, nil, logger.NewNop())

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "admin-1",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	principal, err := svc.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, principal.IsAdmin)
}

func TestVerifyToken_AdminByEmailList(t *testing.T) {
	svc := NewService(testSecret, []string{"Ops@Example.com"}, logger.NewNop())

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "user-9",
		"email": "ops@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	principal, err := svc.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, principal.IsAdmin, "admin email matching is case-insensitive")
}

func TestVerifyToken_Rejections(t *testing.T) {
	svc := NewService(testSecret, nil, logger.NewNop())
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "empty token",
			token: "",
		},
		{
			name:  "garbage token",
			token: "not-a-jwt",
		},
		{
			name: "wrong secret",
			token: signToken(t, "other-secret", jwt.MapClaims{
				"sub": "user-1",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
		},
		{
			name: "expired token",
			token: signToken(t, testSecret, jwt.MapClaims{
				"sub": "user-1",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
		},
		{
			name: "missing subject",
			token: signToken(t, testSecret, jwt.MapClaims{
				"email": "alice@example.com",
				"exp":   time.Now().Add(time.Hour).Unix(),
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.VerifyToken(ctx, tt.token)
			assert.Error(t, err)
		})
	}
}
