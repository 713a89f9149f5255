package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("should fail while the jwt secret is left at its placeholder", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("should apply defaults and read overrides from the environment", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET", "s3cret")
		t.Setenv("SMTP_HOST", "smtp.example.org")
		t.Setenv("SMTP_FROM_EMAIL", "noreply@example.org")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8000", cfg.Server.HTTPPort)
		assert.Equal(t, "uploads", cfg.Storage.Dir)
		assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
		assert.Equal(t, 168*time.Hour, cfg.Auth.TokenTTL)
		assert.Equal(t, 587, cfg.SMTP.Port)
		assert.Equal(t, "ChantierPlus", cfg.SMTP.FromName)
		assert.Equal(t, "smtp.example.org", cfg.SMTP.Host)
		assert.Equal(t, 20*time.Second, cfg.SMTP.Timeout)
		assert.Equal(t, 90*time.Second, cfg.Notify.Timeout)
		assert.Equal(t, 2*time.Minute, cfg.WriteTimeout())
	})

	t.Run("should reject an smtp timeout longer than the notification deadline", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET", "s3cret")
		t.Setenv("SMTP_TIMEOUT", "2m")
		t.Setenv("NOTIFY_TIMEOUT", "1m")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("should require a sender address once a relay is configured", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET", "s3cret")
		t.Setenv("SMTP_HOST", "smtp.example.org")
		t.Setenv("SMTP_FROM_EMAIL", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("should read a yaml file named by CONFIG_FILE", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(file, []byte("auth:\n  jwt_secret: from-file\nstorage:\n  dir: /var/lib/chantierplus\n"), 0o600))
		t.Setenv("CONFIG_FILE", file)
		t.Setenv("AUTH_JWT_SECRET", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
		assert.Equal(t, "/var/lib/chantierplus", cfg.Storage.Dir)
	})
}
