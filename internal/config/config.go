package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/nao1215/authgate/pkg/routes"
)

// Config はGatewayプロセスの設定。
type Config struct {
	// AuthServiceURL は検証サービスのベースURL。必須。
	AuthServiceURL string `env:"AUTH_SERVICE_URL,required"`
	// VerifyTimeout は検証呼び出しのタイムアウト。
	VerifyTimeout time.Duration `env:"AUTH_VERIFY_TIMEOUT,default=3s"`
	// ClientTimeout はリクエスト専用HTTPクライアントのタイムアウト。
	ClientTimeout time.Duration `env:"AUTH_CLIENT_TIMEOUT,default=5s"`
	// UnprotectedRoutes はセミコロン区切りの認証不要ルート。
	UnprotectedRoutes []string `env:"UNPROTECTED_ROUTES"`
	// UnprotectedRoutesFile は認証不要ルートを記述したYAMLファイルのパス。
	UnprotectedRoutesFile string `env:"UNPROTECTED_ROUTES_FILE"`
	// Port はサーバーのリッスンポート。
	Port string `env:"PORT,default=8080"`
	// UpstreamURL はプロキシ先の内部サービスのURL。
	UpstreamURL string `env:"UPSTREAM_URL,default=http://localhost:8081"`
	// FrontendURL はCORSで許可するオリジン。
	FrontendURL string `env:"FRONTEND_URL,default=http://localhost:3000"`
	// LogLevel はログレベル（debug, info, warn, error）。
	LogLevel string `env:"LOG_LEVEL,default=info"`
}

// Load は環境変数から設定を読み込む。
// AUTH_SERVICE_URLが未設定の場合はエラーを返す。
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return nil, fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}
	if err := cfg.loadRoutesFile(); err != nil {
		return nil, err
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadRoutesFile はYAMLファイルの認証不要ルートを環境変数の値に追加する。
func (c *Config) loadRoutesFile() error {
	routeList := make([]string, 0, len(c.UnprotectedRoutes))
	for _, r := range c.UnprotectedRoutes {
		if r = strings.TrimSpace(r); r != "" {
			routeList = append(routeList, r)
		}
	}
	if c.UnprotectedRoutesFile != "" {
		fromFile, err := routes.LoadFile(c.UnprotectedRoutesFile)
		if err != nil {
			return err
		}
		routeList = append(routeList, fromFile...)
	}
	c.UnprotectedRoutes = routeList
	return nil
}

// SlogLevel はLogLevelをslog.Levelに変換する。
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, errors.Join(fmt.Errorf("LOG_LEVELが不正: %q", c.LogLevel), err)
	}
	return level, nil
}
