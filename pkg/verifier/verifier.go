package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nao1215/authgate/pkg/httpclient"
)

const (
	// DefaultTimeout は検証呼び出しのデフォルトタイムアウト。
	DefaultTimeout = 3 * time.Second
	// VerifyPath は検証エンドポイントのパス。
	VerifyPath = "/token/verify-token/"
	// maxMessageBytes は拒否メッセージとして扱うボディの上限。
	maxMessageBytes = 1024
)

// 呼び出し元に返す固定メッセージ。
const (
	MessageInternal    = "Internal server error"
	MessageTimeout     = "Authentication service timeout"
	MessageUnreachable = "Failed to connect to authentication service"
)

// AuthInfo は検証サービスが返す認証済みの識別情報。
type AuthInfo struct {
	// UserID はユーザーID。
	UserID int64 `json:"user_id"`
	// AppID はアプリケーションID。
	AppID int64 `json:"app_id"`
	// Path は検証対象となったリクエストパス。
	Path string `json:"path"`
	// TokenID は検証サービス側のトークンID。
	TokenID int64 `json:"token_id"`
}

// authInfoBody は検証サービスの成功レスポンス。欠落したフィールドを検出するためポインタで受ける。
type authInfoBody struct {
	UserID  *int64  `json:"user_id"`
	AppID   *int64  `json:"app_id"`
	Path    *string `json:"path"`
	TokenID *int64  `json:"token_id"`
}

// request は検証サービスに送信するペイロード。
type request struct {
	Path      string `json:"path"`
	TokenCode string `json:"token_code"`
}

// Client はトークン検証サービスのクライアント。
// 構築後は読み取り専用であり、複数のリクエストから並行に使用できる。
type Client struct {
	// http は検証サービス向けのHTTPクライアント。資格情報はデフォルトヘッダーに持たない。
	http *httpclient.Client
	// timeout は1回の検証呼び出しの上限時間。
	timeout time.Duration
}

// Option はClientの設定を変更する関数。
type Option func(*Client)

// WithTimeout は検証呼び出しのタイムアウトを設定する。
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New は検証サービスのクライアントを生成する。
// baseURLはhttpまたはhttpsの絶対URLでなければならない。
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("検証サービスのURLが指定されていません")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("検証サービスのURLが不正: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("検証サービスのURLが不正: %q", baseURL)
	}

	c := &Client{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout <= 0 {
		return nil, fmt.Errorf("検証タイムアウトは正の値が必要: %v", c.timeout)
	}
	c.http = httpclient.New(baseURL, httpclient.WithTimeout(c.timeout))
	return c, nil
}

// Timeout は設定された検証タイムアウトを返す。
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Verify は資格情報をパスに対して検証する。
// 失敗時は常に *Error を返す。
func (c *Client) Verify(ctx context.Context, path, credential string) (*AuthInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.http.Send(ctx, http.MethodPost, VerifyPath, request{Path: path, TokenCode: credential})
	if err != nil {
		if isTimeout(err) {
			return nil, &Error{Kind: KindTimeout, Message: MessageTimeout, Err: err}
		}
		return nil, &Error{Kind: KindUnreachable, Message: MessageUnreachable, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Kind:    KindRejected,
			Message: rejectionMessage(resp.StatusCode, resp.Body),
			Err:     fmt.Errorf("status=%d", resp.StatusCode),
		}
	}

	info, err := decodeAuthInfo(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Message: MessageInternal, Err: err}
	}
	return info, nil
}

// decodeAuthInfo は成功レスポンスをAuthInfoに変換する。
// nullや必須フィールドが欠けたボディはエラーとする。
func decodeAuthInfo(data []byte) (*AuthInfo, error) {
	var body *authInfoBody
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
	}
	if body == nil {
		return nil, errors.New("レスポンスボディが空")
	}

	var missing []string
	if body.UserID == nil {
		missing = append(missing, "user_id")
	}
	if body.AppID == nil {
		missing = append(missing, "app_id")
	}
	if body.Path == nil {
		missing = append(missing, "path")
	}
	if body.TokenID == nil {
		missing = append(missing, "token_id")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("必須フィールドが欠落: %s", strings.Join(missing, ", "))
	}

	return &AuthInfo{
		UserID:  *body.UserID,
		AppID:   *body.AppID,
		Path:    *body.Path,
		TokenID: *body.TokenID,
	}, nil
}

// isTimeout はエラーがタイムアウトによるものかを判定する。
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// rejectionMessage は拒否レスポンスのボディを人間向けメッセージに変換する。
// JSON文字列であれば展開し、それ以外は生のテキストを使う。
func rejectionMessage(status int, body []byte) string {
	var s string
	if err := json.Unmarshal(body, &s); err != nil {
		s = string(body)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		if text := http.StatusText(status); text != "" {
			return text
		}
		return "Authentication failed"
	}
	return truncate(s, maxMessageBytes)
}

// truncate はUTF-8の文字境界を保ったまま文字列をnバイト以内に切り詰める。
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
