package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// newCORSRouter はCORSミドルウェアを適用したテスト用ルーターを生成する。
func newCORSRouter(origins []string, called *bool) *gin.Engine {
	router := gin.New()
	router.Use(CORS(origins))
	handler := func(c *gin.Context) {
		if called != nil {
			*called = true
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/test", handler)
	router.OPTIONS("/test", handler)
	return router
}

// TestCORS はCORSミドルウェアを検証する。
func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("許可されたオリジンにCookie送信を許可するCORSヘッダーが設定されること", func(t *testing.T) {
		t.Parallel()

		router := newCORSRouter([]string{"http://localhost:3000", "https://example.com"}, nil)
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://example.com")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		want := map[string]string{
			"Access-Control-Allow-Origin":      "https://example.com",
			"Access-Control-Allow-Credentials": "true",
			"Access-Control-Allow-Headers":     "Content-Type, X-Request-ID",
			"Access-Control-Expose-Headers":    "X-Request-ID",
			"Access-Control-Max-Age":           "86400",
			"Vary":                             "Origin",
		}
		for key, value := range want {
			if got := w.Header().Get(key); got != value {
				t.Errorf("%s = %q, want %q", key, got, value)
			}
		}
	})

	t.Run("許可されていないオリジンにはCORSヘッダーが設定されないこと", func(t *testing.T) {
		t.Parallel()

		for _, origin := range []string{"https://evil.com", ""} {
			router := newCORSRouter([]string{"http://localhost:3000"}, nil)
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if origin != "" {
				req.Header.Set("Origin", origin)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("origin=%q: ステータスコード = %d, want %d", origin, w.Code, http.StatusOK)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
				t.Errorf("origin=%q: Access-Control-Allow-Origin = %q, want empty string", origin, got)
			}
			if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
				t.Errorf("origin=%q: Access-Control-Allow-Credentials = %q, want empty string", origin, got)
			}
		}
	})

	t.Run("空のオリジン設定はOriginなしのリクエストを許可しないこと", func(t *testing.T) {
		t.Parallel()

		router := newCORSRouter([]string{"", "  "}, nil)
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if _, ok := w.Header()["Access-Control-Allow-Origin"]; ok {
			t.Errorf("Access-Control-Allow-Origin = %q, want unset", w.Header().Get("Access-Control-Allow-Origin"))
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
			t.Errorf("Access-Control-Allow-Credentials = %q, want empty string", got)
		}
	})

	t.Run("OPTIONSリクエストで204が返りハンドラーが呼ばれないこと", func(t *testing.T) {
		t.Parallel()

		called := false
		router := newCORSRouter([]string{"http://localhost:3000"}, &called)
		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusNoContent)
		}
		if called {
			t.Error("OPTIONSリクエストでハンドラーが呼ばれるべきではない")
		}
	})

	t.Run("GETリクエストではハンドラーが実行されること", func(t *testing.T) {
		t.Parallel()

		called := false
		router := newCORSRouter(nil, &called)
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if !called {
			t.Error("GETリクエストでハンドラーが呼ばれるべき")
		}
	})
}
