package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/authgate/pkg/authgate"
	"github.com/nao1215/authgate/pkg/httpclient"
	"github.com/nao1215/authgate/pkg/verifier"
)

// Ginコンテキストに値を格納するためのキー。
const (
	keyAuthInfo   = "auth_info"
	keyHTTPClient = "http_client"
	keyRequestID  = "request_id"
)

// Authenticate は認証ゲートをGinミドルウェアとして返す。
// 転送時はGinコンテキストとRequest.Context()の両方にAuthInfoと
// リクエスト専用HTTPクライアントを設定する。拒否時は403で処理を打ち切る。
func Authenticate(g *authgate.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := g.Check(c.Request)
		c.Header(authgate.HeaderRequestID, d.RequestID)

		if d.State != authgate.StateForwarded {
			if cookie := d.Rejection.ClearingCookie(); cookie != nil {
				http.SetCookie(c.Writer, cookie)
			}
			c.AbortWithStatusJSON(d.Rejection.Status, d.Rejection.Message)
			return
		}

		c.Request = d.Attach(c.Request)
		c.Set(keyRequestID, d.RequestID)
		c.Set(keyHTTPClient, d.Client)
		if d.AuthInfo != nil {
			c.Set(keyAuthInfo, d.AuthInfo)
		}
		c.Next()
	}
}

// GetAuthInfo はGinコンテキストから検証済みのAuthInfoを取得する。
// Authenticateミドルウェアが事前に適用され、保護ルートである必要がある。
func GetAuthInfo(c *gin.Context) (*verifier.AuthInfo, bool) {
	v, _ := c.Get(keyAuthInfo)
	info, ok := v.(*verifier.AuthInfo)
	return info, ok
}

// GetHTTPClient はGinコンテキストからリクエスト専用HTTPクライアントを取得する。
// 認証済みリクエストでは元リクエストのCookieを下流に転送する。
func GetHTTPClient(c *gin.Context) (*httpclient.Client, bool) {
	v, _ := c.Get(keyHTTPClient)
	client, ok := v.(*httpclient.Client)
	return client, ok
}

// GetRequestID はGinコンテキストからリクエストIDを取得する。
func GetRequestID(c *gin.Context) string {
	return c.GetString(keyRequestID)
}
