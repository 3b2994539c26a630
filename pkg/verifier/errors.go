package verifier

import "fmt"

// Kind は検証失敗の種別。
type Kind int

const (
	// KindRejected は検証サービスが200以外を返したことを表す。
	KindRejected Kind = iota + 1
	// KindMalformedResponse は200だがボディがAuthInfoとして解釈できないことを表す。
	KindMalformedResponse
	// KindTimeout はタイムアウトまでにレスポンスが得られなかったことを表す。
	KindTimeout
	// KindUnreachable は検証サービスに接続できなかったことを表す。
	KindUnreachable
)

// String は種別名を返す。
func (k Kind) String() string {
	switch k {
	case KindRejected:
		return "rejected"
	case KindMalformedResponse:
		return "malformed_response"
	case KindTimeout:
		return "timeout"
	case KindUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Outcome は検証失敗が資格情報そのものの問題か、基盤の問題かを表す。
type Outcome int

const (
	// OutcomeCredentialInvalid は資格情報が無効とみなせる失敗。Cookieを削除する。
	OutcomeCredentialInvalid Outcome = iota + 1
	// OutcomeServiceUnavailable は検証サービス側の一時的な障害。Cookieは残す。
	OutcomeServiceUnavailable
)

// Error は検証失敗を表すエラー。
type Error struct {
	// Kind は失敗の種別。
	Kind Kind
	// Message は呼び出し元に返してよい人間向けのメッセージ。
	Message string
	// Err は原因となったエラー。レスポンスには含めない。
	Err error
}

// Error はエラー文字列を返す。
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("verifier: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("verifier: %s: %s", e.Kind, e.Message)
}

// Unwrap は原因エラーを返す。
func (e *Error) Unwrap() error {
	return e.Err
}

// Outcome は失敗種別をCookie削除の要否に対応する結果に変換する。
func (e *Error) Outcome() Outcome {
	switch e.Kind {
	case KindTimeout, KindUnreachable:
		return OutcomeServiceUnavailable
	default:
		return OutcomeCredentialInvalid
	}
}
