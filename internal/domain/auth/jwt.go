// Package auth issues and validates device session tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "scanflow/internal/core/context"
	"scanflow/internal/core/id"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
// Device tokens live for one shift.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:   secret,
		Issuer:   "scanflow",
		TokenTTL: 12 * time.Hour,
	}
}

// DeviceClaims identifies a scanning terminal and its operator.
type DeviceClaims struct {
	jwt.RegisteredClaims
	DeviceID string `json:"did"`
	UserID   string `json:"uid,omitempty"`
}

// JWTService handles device token operations.
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config, now: time.Now}
}

// GenerateDeviceToken issues a session token for deviceID.
func (s *JWTService) GenerateDeviceToken(deviceID, userID string) (string, time.Time, error) {
	if deviceID == "" {
		return "", time.Time{}, errors.New("device id is required")
	}

	now := s.now()
	expiresAt := now.Add(s.config.TokenTTL)

	claims := DeviceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.NewKey(),
			Issuer:    s.config.Issuer,
			Subject:   deviceID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		DeviceID: deviceID,
		UserID:   userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a device token and returns its session.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.SessionContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &DeviceClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(s.config.Issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*DeviceClaims)
	if !ok || !token.Valid || claims.DeviceID == "" {
		return nil, fmt.Errorf("invalid token claims")
	}

	return &appctx.SessionContext{
		DeviceID:  claims.DeviceID,
		UserID:    claims.UserID,
		SessionID: claims.ID,
	}, nil
}
