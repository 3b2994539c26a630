// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// 認証ゲート（authgate）のGin向けアダプタ、パニックリカバリ、
// Cookie認証に対応したCORS設定を含む。
package middleware
