package auth

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/JMURv/session-keeper/internal/auth/jwt"
	"github.com/JMURv/session-keeper/internal/config"
	"github.com/JMURv/session-keeper/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuth() *Auth {
	conf := config.Config{}
	conf.Auth.JWT.Secret = "secret"
	conf.Auth.JWT.Issuer = "test"
	conf.Auth.BcryptCost = bcrypt.MinCost
	return New(conf)
}

func TestAuth_HashAndCompare(t *testing.T) {
	a := newAuth()

	hash, err := a.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.NoError(t, a.ComparePasswords([]byte(hash), []byte("password123")))
	assert.ErrorIs(t, a.ComparePasswords([]byte(hash), []byte("wrong")), ErrInvalidCredentials)
	assert.ErrorIs(t, a.ComparePasswords([]byte("not-a-hash"), []byte("password123")), ErrInvalidCredentials)

	_, err = a.Hash(strings.Repeat("a", 73))
	assert.Error(t, err)
}

func TestAuth_TokenPurposes(t *testing.T) {
	ctx := context.Background()
	a := newAuth()
	uid := uuid.New()

	session, err := a.NewSessionToken(ctx, uid)
	require.NoError(t, err)
	reset, err := a.NewResetToken(ctx, uid)
	require.NoError(t, err)

	claims, err := a.ParseSessionClaims(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, uid, claims.UID)
	assert.WithinDuration(t, time.Now().Add(config.SessionTokenDuration), claims.ExpiresAt.Time, 2*time.Second)

	_, err = a.ParseSessionClaims(ctx, reset)
	assert.ErrorIs(t, err, jwt.ErrTokenMalformed)

	_, err = a.ParseResetClaims(ctx, session)
	assert.ErrorIs(t, err, jwt.ErrTokenMalformed)

	claims, err = a.ParseResetClaims(ctx, reset)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(config.ResetTokenDuration), claims.ExpiresAt.Time, 2*time.Second)
}

func TestGenerateDevice(t *testing.T) {
	uid := uuid.New()

	tests := []struct {
		name       string
		req        *dto.DeviceRequest
		deviceType string
		nameSuffix string
	}{
		{
			name: "Desktop",
			req: &dto.DeviceRequest{
				IP: "10.0.0.1",
				UA: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
			deviceType: DeviceDesktop,
			nameSuffix: " - X11",
		},
		{
			name: "Mobile",
			req: &dto.DeviceRequest{
				IP: "10.0.0.2",
				UA: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			},
			deviceType: DeviceMobile,
			nameSuffix: " - iPhone",
		},
		{
			name:       "Bot",
			req:        &dto.DeviceRequest{UA: "Googlebot/2.1 (+http://www.google.com/bot.html)"},
			deviceType: DeviceBot,
		},
		{
			name:       "Empty",
			req:        &dto.DeviceRequest{},
			deviceType: DeviceDesktop,
			nameSuffix: "Unknown - Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				s := GenerateDevice(uid, "token", tt.req)
				assert.Equal(t, uid, s.UserID)
				assert.Equal(t, "token", s.Token)
				assert.Equal(t, tt.req.IP, s.IP)
				assert.Equal(t, tt.req.UA, s.UA)
				assert.Equal(t, tt.deviceType, s.DeviceType)
				assert.True(t, strings.HasSuffix(s.Name, tt.nameSuffix), s.Name)
				assert.NotEmpty(t, s.Browser)
			},
		)
	}
}

func TestGenerateDevice_OversizedFields(t *testing.T) {
	req := &dto.DeviceRequest{
		IP: strings.Repeat("203.0.113.7, ", 10),
		UA: "Mozilla/5.0 (" + strings.Repeat("é", 300) + "; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/" +
			strings.Repeat("1.", 200) + " Safari/537.36",
	}

	s := GenerateDevice(uuid.New(), "token", req)
	assert.Equal(t, req.UA, s.UA)

	for _, f := range []struct {
		val string
		max int
	}{
		{s.Name, MaxNameLen},
		{s.DeviceType, MaxDeviceTypeLen},
		{s.OS, MaxOSLen},
		{s.Browser, MaxBrowserLen},
		{s.IP, MaxIPLen},
	} {
		assert.LessOrEqual(t, utf8.RuneCountInString(f.val), f.max, f.val)
		assert.True(t, utf8.ValidString(f.val), f.val)
	}
	assert.Equal(t, MaxIPLen, utf8.RuneCountInString(s.IP))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "héé", truncate("héééé", 3))
	assert.Equal(t, "", truncate("abc", 0))
}
