package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jonathan/scorm-packager/internal/config"
	"github.com/jonathan/scorm-packager/internal/server/middleware"
)

// DownloadClaims grants access to the package of one run.
type DownloadClaims struct {
	RunID uuid.UUID `json:"run_id"`
	jwt.RegisteredClaims
}

// GetRunID implements middleware.RunIDGetter.
func (c *DownloadClaims) GetRunID() uuid.UUID {
	return c.RunID
}

// DownloadTokenService signs and validates package download tokens.
type DownloadTokenService struct {
	config *config.DownloadTokenConfig
}

// NewDownloadTokenService creates a token service with the given configuration.
func NewDownloadTokenService(cfg *config.DownloadTokenConfig) *DownloadTokenService {
	return &DownloadTokenService{config: cfg}
}

// GenerateToken returns a signed token for runID and its expiry time.
func (s *DownloadTokenService) GenerateToken(runID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(s.config.ExpirationMinutes) * time.Minute)

	claims := &DownloadClaims{
		RunID: runID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   runID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a download token and returns its claims.
func (s *DownloadTokenService) ValidateToken(tokenString string) (*DownloadClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &DownloadClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("invalid token signature: %w", err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("token expired: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("malformed token: %w", err)
		default:
			return nil, fmt.Errorf("failed to parse token: %w", err)
		}
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	if claims.RunID == uuid.Nil {
		return nil, fmt.Errorf("token does not name a run")
	}

	return claims, nil
}

// AsTokenValidator adapts the service to middleware.TokenValidator.
func (s *DownloadTokenService) AsTokenValidator() middleware.TokenValidator {
	return &downloadTokenValidator{service: s}
}

type downloadTokenValidator struct {
	service *DownloadTokenService
}

func (v *downloadTokenValidator) ValidateToken(tokenString string) (middleware.RunIDGetter, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
