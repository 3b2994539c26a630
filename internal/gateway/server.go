package gateway

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/authgate/internal/config"
	"github.com/nao1215/authgate/pkg/authgate"
	"github.com/nao1215/authgate/pkg/middleware"
)

// healthPath はヘルスチェックのパス。常に認証不要ルートとして登録する。
const healthPath = "/health"

// Server はAPI GatewayサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// upstreamURL はプロキシ先の内部サービスのURL。
	upstreamURL string
	// logger はログ出力先。
	logger *slog.Logger
}

// NewServer は新しいGatewayサーバーを生成する。
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	gate, err := authgate.New(authgate.Config{
		VerificationURL:     cfg.AuthServiceURL,
		UnprotectedRoutes:   append([]string{healthPath}, cfg.UnprotectedRoutes...),
		VerificationTimeout: cfg.VerifyTimeout,
		OutboundTimeout:     cfg.ClientTimeout,
		Logger:              logger,
	})
	if err != nil {
		return nil, fmt.Errorf("認証ゲートの初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{cfg.FrontendURL}))
	router.Use(middleware.Authenticate(gate))

	s := &Server{
		router:      router,
		port:        cfg.Port,
		upstreamURL: cfg.UpstreamURL,
		logger:      logger,
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// ServeHTTP はhttp.Handlerを実装する。テストから直接呼び出すために使う。
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// ヘルスチェック（認証不要）
	s.router.GET(healthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "gateway"})
	})

	api := s.router.Group("/api/v1")
	{
		// 認証済みユーザーの情報
		api.GET("/me", s.handleGetCurrentUser())

		// 内部サービスの稼働状況
		api.GET("/upstream/status", s.handleUpstreamStatus())

		// 内部サービスへのプロキシ
		api.Any("/proxy/*path", s.handleProxy())
	}
}

// handleGetCurrentUser は検証サービスが返した識別情報を返すハンドラを返す。
func (s *Server) handleGetCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		info, ok := middleware.GetAuthInfo(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, "Authentication required")
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

// upstreamStatus は内部サービスのヘルスチェックのレスポンス。
type upstreamStatus struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
}

// handleUpstreamStatus はリクエスト専用HTTPクライアントで内部サービスのヘルスチェックを呼び出すハンドラを返す。
func (s *Server) handleUpstreamStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := middleware.GetHTTPClient(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, "Internal server error")
			return
		}

		var status upstreamStatus
		if err := client.GetJSON(c.Request.Context(), s.upstreamURL+healthPath, &status); err != nil {
			s.logger.Error("内部サービスのヘルスチェックに失敗", "request_id", middleware.GetRequestID(c), "error", err)
			c.JSON(http.StatusBadGateway, "Failed to reach upstream service")
			return
		}
		c.JSON(http.StatusOK, gin.H{"upstream": status})
	}
}

// handleProxy はリクエストを内部サービスに転送するハンドラを返す。
func (s *Server) handleProxy() gin.HandlerFunc {
	return func(c *gin.Context) {
		proxyURL := s.upstreamURL + c.Param("path")
		if c.Request.URL.RawQuery != "" {
			proxyURL += "?" + c.Request.URL.RawQuery
		}
		s.doProxy(c, proxyURL)
	}
}

// doProxy はリクエスト専用HTTPクライアントでリクエストを内部サービスに転送する。
// クライアントのデフォルトヘッダーにより元のCookieとリクエストIDが引き継がれる。
func (s *Server) doProxy(c *gin.Context, url string) {
	client, ok := middleware.GetHTTPClient(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, "Internal server error")
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, url, c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, "Internal server error")
		return
	}
	if ct := c.GetHeader("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}

	resp, err := client.Do(req)
	if err != nil {
		s.logger.Error("プロキシエラー", "url", url, "request_id", middleware.GetRequestID(c), "error", err)
		c.JSON(http.StatusBadGateway, "Failed to reach upstream service")
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	c.Status(resp.StatusCode)
	c.Header("Content-Type", contentType)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		s.logger.Warn("プロキシレスポンスの転送に失敗", "url", url, "error", err)
	}
}
