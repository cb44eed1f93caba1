package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/scorm-packager/internal/config"
)

const testSecret = "test-secret-key-for-download-tokens-32-bytes"

func setupTokenService(_ *testing.T, minutes int) *DownloadTokenService {
	return NewDownloadTokenService(&config.DownloadTokenConfig{
		Secret:            testSecret,
		ExpirationMinutes: minutes,
	})
}

func TestDownloadToken_RoundTrip(t *testing.T) {
	service := setupTokenService(t, 30)
	runID := uuid.New()

	token, expiresAt, err := service.GenerateToken(runID)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3, "JWT should have 3 parts separated by dots")
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, runID, claims.RunID)
	assert.Equal(t, runID.String(), claims.Subject)
}

func TestDownloadToken_WrongSecret(t *testing.T) {
	token, _, err := setupTokenService(t, 30).GenerateToken(uuid.New())
	require.NoError(t, err)

	other := NewDownloadTokenService(&config.DownloadTokenConfig{Secret: "another-secret", ExpirationMinutes: 30})
	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token signature")
}

func TestDownloadToken_Expired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	claims := &DownloadClaims{
		RunID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(past),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = setupTokenService(t, 30).ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestDownloadToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := &DownloadClaims{RunID: uuid.New()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = setupTokenService(t, 30).ValidateToken(token)
	assert.Error(t, err)
}

func TestDownloadToken_Malformed(t *testing.T) {
	service := setupTokenService(t, 30)

	_, err := service.ValidateToken("")
	assert.Error(t, err)

	_, err = service.ValidateToken("not.a.jwt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed token")
}

func TestDownloadToken_AsTokenValidator(t *testing.T) {
	service := setupTokenService(t, 30)
	runID := uuid.New()
	token, _, err := service.GenerateToken(runID)
	require.NoError(t, err)

	got, err := service.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, runID, got.GetRunID())
}
