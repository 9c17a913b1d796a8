package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.False(t, cfg.DotEnvLoaded)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, "brilliora", cfg.MongoDB)
	assert.Equal(t, 10*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, 10*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 2, cfg.GatewayMaxRetries)
	assert.Equal(t, "https://api.razorpay.com", cfg.GatewayBaseURL)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GATEWAY_TIMEOUT", "3s")
	t.Setenv("RAZORPAY_API_BASE", "http://localhost:4000/")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, "http://localhost:4000", cfg.GatewayBaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("MONGO_DB=fromfile\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("MONGO_DB") })

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.DotEnvLoaded)
	assert.Equal(t, "fromfile", cfg.MongoDB)
}

func TestLoad_RejectsBadTimeout(t *testing.T) {
	t.Setenv("STORE_TIMEOUT", "0s")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestEnvCredentials_ReadsLiveEnvironment(t *testing.T) {
	src := EnvCredentials()

	t.Setenv("RAZORPAY_KEY_ID", "")
	t.Setenv("RAZORPAY_KEY_SECRET", "")
	assert.False(t, src.Credentials().Configured())

	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_1")
	assert.False(t, src.Credentials().Configured())

	t.Setenv("RAZORPAY_KEY_SECRET", "s3cret")
	creds := src.Credentials()
	assert.True(t, creds.Configured())
	assert.Equal(t, "rzp_test_1", creds.KeyID)
}

func TestStaticCredentials(t *testing.T) {
	src := StaticCredentials{KeyID: "k", KeySecret: "s"}
	assert.True(t, src.Credentials().Configured())
	assert.False(t, StaticCredentials{}.Credentials().Configured())
}
