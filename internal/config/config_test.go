package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustLoad(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("VAULT_SECRET", "vault")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("RESET_TOKEN_TTL", "5m")

	conf := MustLoad()
	require.NotNil(t, conf.Jaeger)

	assert.Equal(t, "secret", conf.Auth.JWT.Secret)
	assert.Equal(t, SessionTokenDuration, conf.Auth.JWT.SessionTTL)
	assert.Equal(t, 5*time.Minute, conf.Auth.JWT.ResetTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, conf.Kafka.Brokers)
	assert.Equal(t, "postgres", conf.DB.Driver)
	assert.False(t, conf.Auth.Captcha.Enabled)
	assert.Equal(t, 10*time.Second, conf.Notify.Timeout)
}

func TestMustLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("VAULT_SECRET", "vault")

	assert.Panics(t, func() { MustLoad() })
}
