package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"admin-backend/internal/api"
	"admin-backend/internal/config"
)

const (
	DefaultAccessTokenTTL  = 24 * time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the signed token payload. Deliberately minimal: only the user id.
// Roles and permissions are re-fetched from the identity store on every
// verification so a revoked grant takes effect on the next request.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"id"`
}

// TokenManager signs and verifies the access/refresh token pair. Access and
// refresh tokens use separate secrets so one cannot stand in for the other.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func NewTokenManager(cfg config.AuthConfig) *TokenManager {
	m := &TokenManager{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	}
	if m.AccessTTL <= 0 {
		m.AccessTTL = DefaultAccessTokenTTL
	}
	if m.RefreshTTL <= 0 {
		m.RefreshTTL = DefaultRefreshTokenTTL
	}
	return m
}

// SignAccessToken creates a short-lived signed token carrying the user id.
func (m *TokenManager) SignAccessToken(userID int64) (string, error) {
	return sign(userID, m.accessSecret, m.AccessTTL, "")
}

// SignRefreshToken creates a long-lived signed token for silent re-issue of
// access tokens. Each refresh token gets its own jti.
func (m *TokenManager) SignRefreshToken(userID int64) (string, error) {
	return sign(userID, m.refreshSecret, m.RefreshTTL, uuid.NewString())
}

func sign(userID int64, secret []byte, ttl time.Duration, jti string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken validates an access token. Failures come back as
// AppErrors: TOKEN_EXPIRED past expiry, TOKEN_INVALID for a bad signature or
// structure, TOKEN_VERIFICATION_FAILED for anything else. All carry 401.
func (m *TokenManager) VerifyAccessToken(tokenStr string) (*Claims, error) {
	claims, err := parse(tokenStr, m.accessSecret)
	if err == nil {
		return claims, nil
	}
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, api.TokenExpiredError()
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return nil, api.TokenInvalidError()
	default:
		return nil, api.TokenVerificationFailedError()
	}
}

// VerifyRefreshToken validates a refresh token with the same taxonomy under
// refresh-specific codes.
func (m *TokenManager) VerifyRefreshToken(tokenStr string) (*Claims, error) {
	claims, err := parse(tokenStr, m.refreshSecret)
	if err == nil {
		return claims, nil
	}
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, api.RefreshTokenExpiredError()
	}
	return nil, api.RefreshTokenInvalidError()
}

func parse(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
