package authgate

import (
	"context"

	"github.com/nao1215/authgate/pkg/httpclient"
	"github.com/nao1215/authgate/pkg/verifier"
)

// contextKey はコンテキストキーの型。
type contextKey string

const (
	// contextKeyAuthInfo は検証済みAuthInfoを格納するキー。
	contextKeyAuthInfo contextKey = "auth_info"
	// contextKeyHTTPClient はリクエスト専用HTTPクライアントを格納するキー。
	contextKeyHTTPClient contextKey = "http_client"
	// contextKeyRequestID はリクエストIDを格納するキー。
	contextKeyRequestID contextKey = "request_id"
)

// WithAuthInfo はコンテキストに検証済みAuthInfoを設定する。
func WithAuthInfo(ctx context.Context, info *verifier.AuthInfo) context.Context {
	return context.WithValue(ctx, contextKeyAuthInfo, info)
}

// AuthInfoFrom はコンテキストからAuthInfoを取得する。
// 認証不要ルートなど、検証を経ていない場合はfalseを返す。
func AuthInfoFrom(ctx context.Context) (*verifier.AuthInfo, bool) {
	info, ok := ctx.Value(contextKeyAuthInfo).(*verifier.AuthInfo)
	return info, ok && info != nil
}

// WithHTTPClient はコンテキストにリクエスト専用HTTPクライアントを設定する。
func WithHTTPClient(ctx context.Context, client *httpclient.Client) context.Context {
	return context.WithValue(ctx, contextKeyHTTPClient, client)
}

// HTTPClientFrom はコンテキストからリクエスト専用HTTPクライアントを取得する。
func HTTPClientFrom(ctx context.Context) (*httpclient.Client, bool) {
	client, ok := ctx.Value(contextKeyHTTPClient).(*httpclient.Client)
	return client, ok && client != nil
}

// WithRequestID はコンテキストにリクエストIDを設定する。
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

// RequestIDFrom はコンテキストからリクエストIDを取得する。未設定の場合は空文字列。
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}
