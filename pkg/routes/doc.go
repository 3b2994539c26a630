// Package routes は認証を必要としないルート（許可リスト）を判定する。
//
// 起動時に一度だけ構築され、以降は読み取り専用として全リクエストで共有される。
// 登録されていないパスはすべて保護対象として扱う。
package routes
