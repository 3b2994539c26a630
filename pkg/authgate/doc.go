// Package authgate はHTTPサービスの前段に置く認証ゲートを提供する。
//
// リクエストごとに bearer Cookie を取り出し、認証不要ルートの判定、
// リモート検証サービスへの問い合わせを行い、結果に応じて
// リクエストを転送するか403で打ち切る。
//
// 転送されるリクエストのコンテキストには、検証済みの AuthInfo と
// そのリクエスト専用の下流向けHTTPクライアントが設定される。
// 下流のハンドラは AuthInfoFrom と HTTPClientFrom で取り出す。
//
// Gate.Check はフレームワーク非依存の判定処理であり、
// net/http 向けの Gate.Handler と gin 向けの middleware.Authenticate が
// 同じ判定を共有する。
package authgate
