package config

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/vaultbox/internal/common"
	"github.com/dmitrijs2005/vaultbox/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "vault", cfg.S3Bucket)
	assert.Equal(t, 24*time.Hour, cfg.EntryTTL)
	assert.Equal(t, 30*time.Second, cfg.UploadTimeout)
	assert.Equal(t, "@hourly", cfg.SweepSchedule)
	assert.NotEmpty(t, cfg.DatabaseDSN)
	assert.NotEmpty(t, cfg.ShareBaseURL)
}

func TestParseEnv_Overlay(t *testing.T) {
	t.Setenv("S3_BUCKET", "other-bucket")
	t.Setenv("ENTRY_TTL", "48h")
	t.Setenv("ENCRYPTION_KEY", "01234567890123456789012345678901")

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "other-bucket", cfg.S3Bucket)
	assert.Equal(t, 48*time.Hour, cfg.EntryTTL)
	assert.Equal(t, "us-east-1", cfg.S3Region, "unset vars keep defaults")

	key, err := cfg.SecretKey()
	require.NoError(t, err)
	assert.Len(t, key, cryptox.KeySize)
}

func TestSecretKey(t *testing.T) {
	t.Run("raw key wrong length", func(t *testing.T) {
		cfg := &Config{EncryptionKey: "short"}
		_, err := cfg.SecretKey()
		assert.ErrorIs(t, err, common.ErrConfig)
	})

	t.Run("missing entirely", func(t *testing.T) {
		cfg := &Config{}
		_, err := cfg.SecretKey()
		assert.ErrorIs(t, err, common.ErrConfig)
	})

	t.Run("derived from passphrase", func(t *testing.T) {
		cfg := &Config{EncryptionPassphrase: "correct horse", EncryptionSalt: "battery staple"}
		k1, err := cfg.SecretKey()
		require.NoError(t, err)
		assert.Len(t, k1, cryptox.KeySize)

		k2, err := cfg.SecretKey()
		require.NoError(t, err)
		assert.Equal(t, k1, k2, "derivation must be stable")
	})

	t.Run("raw key wins over passphrase", func(t *testing.T) {
		cfg := &Config{
			EncryptionKey:        "01234567890123456789012345678901",
			EncryptionPassphrase: "ignored",
			EncryptionSalt:       "ignored",
		}
		key, err := cfg.SecretKey()
		require.NoError(t, err)
		assert.Equal(t, []byte(cfg.EncryptionKey), key)
	})
}
