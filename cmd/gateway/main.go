// 認証ゲート付きAPI Gatewayサービスのエントリポイント。
// すべてのリクエストをトークン検証サービスで認証し、
// 認証済みリクエストのみを内部サービスに転送する。
package main

import (
	"log/slog"
	"os"

	"github.com/nao1215/authgate/internal/config"
	"github.com/nao1215/authgate/internal/gateway"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("設定の読み込みに失敗", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	server, err := gateway.NewServer(cfg, logger)
	if err != nil {
		logger.Error("Gatewayサーバーの初期化に失敗", "error", err)
		os.Exit(1)
	}

	logger.Info("Gatewayサービスを起動します", "port", cfg.Port, "auth_service", cfg.AuthServiceURL, "unprotected_routes", len(cfg.UnprotectedRoutes)+1)
	if err := server.Run(); err != nil {
		logger.Error("Gatewayサービスの起動に失敗", "error", err)
		os.Exit(1)
	}
}
