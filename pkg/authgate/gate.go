package authgate

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/authgate/pkg/httpclient"
	"github.com/nao1215/authgate/pkg/routes"
	"github.com/nao1215/authgate/pkg/verifier"
)

// DefaultOutboundTimeout はリクエスト専用HTTPクライアントのデフォルトタイムアウト。
const DefaultOutboundTimeout = 5 * time.Second

// HeaderRequestID はリクエストIDを伝播するHTTPヘッダー。
const HeaderRequestID = "X-Request-ID"

// maxRequestIDLen は受け入れる X-Request-ID の最大長。
const maxRequestIDLen = 128

// Config は認証ゲートの設定。起動時に一度だけ構築する。
type Config struct {
	// VerificationURL は検証サービスのベースURL。必須。
	VerificationURL string
	// UnprotectedRoutes は認証不要ルートの一覧。
	UnprotectedRoutes []string
	// VerificationTimeout は検証呼び出しのタイムアウト。0の場合は3秒。
	VerificationTimeout time.Duration
	// OutboundTimeout はリクエスト専用HTTPクライアントのタイムアウト。0の場合は5秒。
	OutboundTimeout time.Duration
	// Logger はログ出力先。nilの場合はslog.Default()。
	Logger *slog.Logger
}

// State はリクエストの最終状態。
type State int

const (
	// StateForwarded は下流のハンドラに転送することを表す。
	StateForwarded State = iota + 1
	// StateRejected は403で打ち切ることを表す。
	StateRejected
)

// Decision は1リクエストに対するゲートの判定結果。
type Decision struct {
	// State は最終状態。
	State State
	// Path は判定に使った正規化済みパス。
	Path string
	// RequestID はログと下流呼び出しに使うリクエストID。
	RequestID string
	// AuthInfo は検証済みの識別情報。認証不要ルートではnil。
	AuthInfo *verifier.AuthInfo
	// Client はこのリクエスト専用のHTTPクライアント。転送時のみ設定される。
	Client *httpclient.Client
	// Rejection は拒否レスポンス。拒否時のみ設定される。
	Rejection *Rejection
}

// Attach は判定結果をリクエストのコンテキストに設定したリクエストを返す。
func (d *Decision) Attach(r *http.Request) *http.Request {
	ctx := WithRequestID(r.Context(), d.RequestID)
	if d.Client != nil {
		ctx = WithHTTPClient(ctx, d.Client)
	}
	if d.AuthInfo != nil {
		ctx = WithAuthInfo(ctx, d.AuthInfo)
	}
	return r.WithContext(ctx)
}

// Gate は認証ゲート本体。
// 構築後は読み取り専用で、複数のリクエストから並行に使用できる。
type Gate struct {
	// routes は認証不要ルートの集合。
	routes *routes.Set
	// verifier は検証サービスのクライアント。
	verifier *verifier.Client
	// outboundTimeout はリクエスト専用HTTPクライアントのタイムアウト。
	outboundTimeout time.Duration
	// logger はログ出力先。
	logger *slog.Logger
}

// New は設定から認証ゲートを生成する。
// 検証サービスのURLが未指定または不正な場合はエラーを返す。
func New(cfg Config) (*Gate, error) {
	var opts []verifier.Option
	if cfg.VerificationTimeout != 0 {
		opts = append(opts, verifier.WithTimeout(cfg.VerificationTimeout))
	}
	v, err := verifier.New(cfg.VerificationURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("検証クライアントの初期化に失敗: %w", err)
	}

	outbound := cfg.OutboundTimeout
	if outbound == 0 {
		outbound = DefaultOutboundTimeout
	}
	if outbound < 0 {
		return nil, fmt.Errorf("下流クライアントのタイムアウトは正の値が必要: %v", outbound)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Gate{
		routes:          routes.New(cfg.UnprotectedRoutes...),
		verifier:        v,
		outboundTimeout: outbound,
		logger:          logger,
	}, nil
}

// Check はリクエストを判定する。
// 認証が必要なリクエストでは検証サービスを最大1回だけ呼び出す。
func (g *Gate) Check(r *http.Request) *Decision {
	path := r.URL.Path
	if path == "" {
		path = "/"
	}
	requestID := r.Header.Get(HeaderRequestID)
	if !validRequestID(requestID) {
		requestID = uuid.NewString()
	}
	log := g.logger.With("request_id", requestID, "path", path)
	log.Info("認証を開始")

	d := &Decision{Path: path, RequestID: requestID}

	if g.routes.IsUnprotected(path) {
		log.Debug("認証不要ルートのため認証をスキップ")
		d.State = StateForwarded
		d.Client = g.defaultClient(requestID)
		return d
	}

	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		log.Warn("bearer Cookieが存在しない")
		return d.reject(RejectAndClear(MessageMissingCredential))
	}
	log = log.With("credential", credentialLabel(cookie.Value))

	info, err := g.verifier.Verify(r.Context(), path, cookie.Value)
	if err != nil {
		return d.reject(g.rejection(log, err))
	}

	client, err := g.scopedClient(r.Header, requestID)
	if err != nil {
		log.Error("下流クライアントの生成に失敗", "error", err)
		return d.reject(RejectAndClear(verifier.MessageInternal))
	}

	log.Info("認証に成功", "user_id", info.UserID, "app_id", info.AppID, "token_id", info.TokenID)
	d.State = StateForwarded
	d.AuthInfo = info
	d.Client = client
	return d
}

// Handler はnet/http向けの認証ミドルウェアを返す。
func (g *Gate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.Check(r)
		if d.State != StateForwarded {
			d.Rejection.Write(w)
			return
		}
		next.ServeHTTP(w, d.Attach(r))
	})
}

// reject は拒否状態に遷移させる。
func (d *Decision) reject(rej *Rejection) *Decision {
	d.State = StateRejected
	d.Rejection = rej
	return d
}

// rejection は検証エラーを拒否レスポンスに変換する。
// 基盤の障害ではCookieを削除しない。
func (g *Gate) rejection(log *slog.Logger, err error) *Rejection {
	var verr *verifier.Error
	if !errors.As(err, &verr) {
		log.Error("検証中に想定外のエラー", "error", err)
		return RejectAndClear(verifier.MessageInternal)
	}

	switch verr.Kind {
	case verifier.KindRejected:
		log.Warn("検証サービスが資格情報を拒否", "reason", verr.Message)
	default:
		log.Error("検証サービスの呼び出しに失敗", "kind", verr.Kind.String(), "error", verr.Err)
	}

	if verr.Outcome() == verifier.OutcomeServiceUnavailable {
		return Reject(verr.Message)
	}
	return RejectAndClear(verr.Message)
}

// validRequestID は受信したリクエストIDをそのまま引き継げるかを判定する。
// 英数字と "-", "_", ".", ":" のみで構成された上限以下の長さの値を受け入れる。
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == ':':
		default:
			return false
		}
	}
	return true
}

// defaultClient は認証不要ルート用の資格情報を持たないHTTPクライアントを生成する。
func (g *Gate) defaultClient(requestID string) *httpclient.Client {
	return httpclient.New("",
		httpclient.WithTimeout(g.outboundTimeout),
		httpclient.WithHeader(HeaderRequestID, requestID),
	)
}

// scopedClient は元リクエストのCookieヘッダーを引き継ぐHTTPクライアントを生成する。
// 生成したクライアントはこのリクエスト専用であり、キャッシュしない。
func (g *Gate) scopedClient(h http.Header, requestID string) (*httpclient.Client, error) {
	cookies := h.Values("Cookie")
	if len(cookies) == 0 {
		return nil, errors.New("リクエストにCookieヘッダーが存在しない")
	}
	return httpclient.New("",
		httpclient.WithTimeout(g.outboundTimeout),
		httpclient.WithHeader("Cookie", strings.Join(cookies, "; ")),
		httpclient.WithHeader(HeaderRequestID, requestID),
	), nil
}
