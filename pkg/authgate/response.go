package authgate

import (
	"encoding/json"
	"net/http"
	"time"
)

// CookieName はセッション資格情報を運ぶCookieの名前。
const CookieName = "bearer"

// MessageMissingCredential はCookieが存在しない場合のメッセージ。
const MessageMissingCredential = "Bearer token is missing"

// Rejection はゲートが返す403レスポンスの内容。
type Rejection struct {
	// Status はHTTPステータスコード。常に403。
	Status int
	// Message はJSON文字列としてボディに書き出すメッセージ。
	Message string
	// ClearCredential はbearer Cookieの削除を指示するかどうか。
	ClearCredential bool
}

// RejectAndClear はbearer Cookieの削除を伴う403レスポンスを生成する。
// 資格情報が無効と判断できる場合に使う。
func RejectAndClear(message string) *Rejection {
	return &Rejection{Status: http.StatusForbidden, Message: message, ClearCredential: true}
}

// Reject はCookieを削除しない403レスポンスを生成する。
// 検証サービスの障害など、資格情報の有効性と無関係な失敗に使う。
func Reject(message string) *Rejection {
	return &Rejection{Status: http.StatusForbidden, Message: message}
}

// ClearingCookie はbearer Cookieを即時に失効させるSet-Cookie値を返す。
// ClearCredentialがfalseの場合はnilを返す。
func (r *Rejection) ClearingCookie() *http.Cookie {
	if !r.ClearCredential {
		return nil
	}
	return &http.Cookie{
		Name:    CookieName,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	}
}

// Write はnet/httpのResponseWriterにレスポンスを書き出す。
func (r *Rejection) Write(w http.ResponseWriter) {
	if c := r.ClearingCookie(); c != nil {
		http.SetCookie(w, c)
	}
	body, err := json.Marshal(r.Message)
	if err != nil {
		body = []byte(`"Internal server error"`)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(r.Status)
	_, _ = w.Write(body)
}
