// Package auth issues and validates the bearer tokens that carry a caller's
// business and roles.
package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vendorbook/internal/core/apperror"
	appctx "vendorbook/internal/core/context"
	"vendorbook/internal/core/id"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "vendorbook",
		AccessTokenTTL: 12 * time.Hour,
	}
}

// Claims represents JWT claims. tid is the business the user acts for.
type Claims struct {
	jwt.RegisteredClaims
	UserID     string   `json:"uid"`
	BusinessID string   `json:"tid"`
	Email      string   `json:"email,omitempty"`
	Roles      []string `json:"roles"`
}

// TokenRequest describes the subject of a new token.
type TokenRequest struct {
	UserID     string
	BusinessID id.ID
	Email      string
	Roles      []string
}

// JWTService handles JWT operations.
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config, now: time.Now}
}

var knownRoles = []string{appctx.RoleOwner, appctx.RoleWorker}

// GenerateAccessToken signs a token for req.
func (s *JWTService) GenerateAccessToken(req TokenRequest) (string, time.Time, error) {
	if req.UserID == "" {
		return "", time.Time{}, apperror.NewValidation("user id is required")
	}
	if id.IsNil(req.BusinessID) {
		return "", time.Time{}, apperror.NewValidation("business id is required")
	}
	if len(req.Roles) == 0 {
		return "", time.Time{}, apperror.NewValidation("at least one role is required")
	}
	for _, r := range req.Roles {
		if !slices.Contains(knownRoles, r) {
			return "", time.Time{}, apperror.NewValidation("unknown role").WithDetail("role", r)
		}
	}

	now := s.now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   req.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:     req.UserID,
		BusinessID: req.BusinessID.String(),
		Email:      req.Email,
		Roles:      req.Roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT and returns the user context it carries.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	},
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.NewUnauthorized("token expired")
		}
		return nil, apperror.NewUnauthorized("invalid token").WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperror.NewUnauthorized("invalid token claims")
	}
	if claims.UserID == "" {
		return nil, apperror.NewUnauthorized("token has no user")
	}
	if _, err := id.Parse(claims.BusinessID); err != nil {
		return nil, apperror.NewUnauthorized("token has no business")
	}

	return &appctx.UserContext{
		UserID:     claims.UserID,
		BusinessID: claims.BusinessID,
		Email:      claims.Email,
		Roles:      claims.Roles,
	}, nil
}
