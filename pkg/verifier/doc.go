// Package verifier はリモートのトークン検証サービスを呼び出すクライアントを提供する。
//
// 1リクエストにつき1回だけ POST {baseURL}/token/verify-token/ を発行し、
// 結果を AuthInfo または種別付きの *Error に変換する。リトライは行わない。
package verifier
