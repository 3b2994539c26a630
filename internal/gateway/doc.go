// Package gateway は認証ゲートを組み込んだAPI Gatewayサービスの内部実装を提供する。
//
// すべてのリクエストを認証ゲートに通し、認証済みリクエストは
// リクエスト専用HTTPクライアント（元のbearer Cookieを保持）で内部サービスに転送する。
package gateway
