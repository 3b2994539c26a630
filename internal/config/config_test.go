package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad は環境変数からの設定読み込みを検証する。
// t.Setenvを使うため並列実行しない。
func TestLoad(t *testing.T) {
	t.Run("AUTH_SERVICE_URLが未設定の場合はエラーになること", func(t *testing.T) {
		t.Setenv("AUTH_SERVICE_URL", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AUTH_SERVICE_URL")
	})

	t.Run("デフォルト値が適用されること", func(t *testing.T) {
		t.Setenv("AUTH_SERVICE_URL", "http://token-service:8000")
		t.Setenv("UNPROTECTED_ROUTES", "")
		t.Setenv("UNPROTECTED_ROUTES_FILE", "")
		t.Setenv("AUTH_VERIFY_TIMEOUT", "")
		t.Setenv("AUTH_CLIENT_TIMEOUT", "")
		t.Setenv("PORT", "")
		t.Setenv("LOG_LEVEL", "")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "http://token-service:8000", cfg.AuthServiceURL)
		assert.Equal(t, 3*time.Second, cfg.VerifyTimeout)
		assert.Equal(t, 5*time.Second, cfg.ClientTimeout)
		assert.Equal(t, "8080", cfg.Port)
		assert.Empty(t, cfg.UnprotectedRoutes)

		level, err := cfg.SlogLevel()
		require.NoError(t, err)
		assert.Equal(t, slog.LevelInfo, level)
	})

	t.Run("環境変数とYAMLファイルの認証不要ルートが結合されること", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "routes.yaml")
		require.NoError(t, os.WriteFile(path, []byte("unprotected_routes:\n  - /public/health\n"), 0o600))

		t.Setenv("AUTH_SERVICE_URL", "http://token-service:8000")
		t.Setenv("UNPROTECTED_ROUTES", "/health; /metrics")
		t.Setenv("UNPROTECTED_ROUTES_FILE", path)
		t.Setenv("AUTH_VERIFY_TIMEOUT", "1500ms")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"/health", "/metrics", "/public/health"}, cfg.UnprotectedRoutes)
		assert.Equal(t, 1500*time.Millisecond, cfg.VerifyTimeout)
	})

	t.Run("不正なタイムアウト値はエラーになること", func(t *testing.T) {
		t.Setenv("AUTH_SERVICE_URL", "http://token-service:8000")
		t.Setenv("AUTH_VERIFY_TIMEOUT", "soon")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("不正なLOG_LEVELはエラーになること", func(t *testing.T) {
		t.Setenv("AUTH_SERVICE_URL", "http://token-service:8000")
		t.Setenv("AUTH_VERIFY_TIMEOUT", "")
		t.Setenv("UNPROTECTED_ROUTES_FILE", "")
		t.Setenv("LOG_LEVEL", "verbose")

		_, err := Load()
		assert.Error(t, err)
	})
}
