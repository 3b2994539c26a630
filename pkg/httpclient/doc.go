// Package httpclient はサービス間のHTTP通信を行うクライアントを提供する。
//
// 認証ゲートが検証サービスを呼び出す際と、認証済みリクエストごとに
// 下流サービス向けのクライアントを生成する際に使用する。
// クライアントはデフォルトヘッダー（元リクエストのCookie等）と
// タイムアウトを保持し、リクエストをまたいで再利用してはならない。
package httpclient
