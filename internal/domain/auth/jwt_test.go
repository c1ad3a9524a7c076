package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorbook/internal/core/apperror"
	appctx "vendorbook/internal/core/context"
	"vendorbook/internal/core/id"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))
	biz := id.New()

	token, expiresAt, err := svc.GenerateAccessToken(TokenRequest{
		UserID:     "user-1",
		BusinessID: biz,
		Email:      "owner@example.com",
		Roles:      []string{appctx.RoleOwner},
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(12*time.Hour), expiresAt, time.Minute)

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.UserID)
	assert.Equal(t, biz.String(), user.BusinessID)
	assert.Equal(t, []string{appctx.RoleOwner}, user.Roles)
}

func TestJWTService_GenerateValidation(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))
	tests := []struct {
		name string
		req  TokenRequest
	}{
		{name: "no user", req: TokenRequest{BusinessID: id.New(), Roles: []string{appctx.RoleWorker}}},
		{name: "no business", req: TokenRequest{UserID: "u", Roles: []string{appctx.RoleWorker}}},
		{name: "no roles", req: TokenRequest{UserID: "u", BusinessID: id.New()}},
		{name: "unknown role", req: TokenRequest{UserID: "u", BusinessID: id.New(), Roles: []string{"admin"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.GenerateAccessToken(tt.req)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))
	req := TokenRequest{UserID: "u", BusinessID: id.New(), Roles: []string{appctx.RoleWorker}}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(DefaultJWTConfig("other"))
		token, _, err := other.GenerateAccessToken(req)
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.Equal(t, apperror.CodeUnauthorized, codeOf(t, err))
	})

	t.Run("expired", func(t *testing.T) {
		past := NewJWTService(DefaultJWTConfig("secret"))
		past.now = func() time.Time { return time.Now().Add(-24 * time.Hour) }
		token, _, err := past.GenerateAccessToken(req)
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "token expired")
	})

	t.Run("missing business claim", func(t *testing.T) {
		claims := Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "vendorbook",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			UserID: "u",
			Roles:  []string{appctx.RoleWorker},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.Equal(t, apperror.CodeUnauthorized, codeOf(t, err))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.Equal(t, apperror.CodeUnauthorized, codeOf(t, err))
	})
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr.Code
}
