package authgate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/authgate/pkg/httpclient"
	"github.com/nao1215/authgate/pkg/verifier"
)

// TestRejection は拒否レスポンスの生成を検証する。
func TestRejection(t *testing.T) {
	t.Parallel()

	t.Run("RejectAndClearはbearer Cookieを失効させること", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		RejectAndClear("token expired").Write(rec)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, `"token expired"`, rec.Body.String())
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

		setCookie := rec.Header().Get("Set-Cookie")
		assert.True(t, strings.HasPrefix(setCookie, "bearer=;"), setCookie)
		assert.Contains(t, setCookie, "Path=/")
		assert.Contains(t, setCookie, "Max-Age=0")
		assert.Contains(t, setCookie, "Expires=Thu, 01 Jan 1970 00:00:00 GMT")
	})

	t.Run("RejectはCookieを変更しないこと", func(t *testing.T) {
		t.Parallel()

		rej := Reject("Authentication service timeout")
		assert.Nil(t, rej.ClearingCookie())

		rec := httptest.NewRecorder()
		rej.Write(rec)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, rec.Header().Get("Set-Cookie"))
		assert.Equal(t, `"Authentication service timeout"`, rec.Body.String())
	})

	t.Run("メッセージはJSON文字列としてエスケープされること", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		Reject(`bad "quote"`).Write(rec)
		assert.Equal(t, `"bad \"quote\""`, rec.Body.String())
	})
}

// TestContextAccessors は型付きアクセサを検証する。
func TestContextAccessors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, ok := AuthInfoFrom(ctx)
	assert.False(t, ok)
	_, ok = HTTPClientFrom(ctx)
	assert.False(t, ok)
	assert.Empty(t, RequestIDFrom(ctx))

	info := &verifier.AuthInfo{UserID: 1}
	client := httpclient.New("")
	ctx = WithRequestID(WithHTTPClient(WithAuthInfo(ctx, info), client), "req-1")

	gotInfo, ok := AuthInfoFrom(ctx)
	require.True(t, ok)
	assert.Same(t, info, gotInfo)
	gotClient, ok := HTTPClientFrom(ctx)
	require.True(t, ok)
	assert.Same(t, client, gotClient)
	assert.Equal(t, "req-1", RequestIDFrom(ctx))

	// nilを設定した場合は未設定として扱う
	_, ok = AuthInfoFrom(WithAuthInfo(context.Background(), nil))
	assert.False(t, ok)
}

// TestCredentialLabel はログ用ラベルの生成を検証する。
func TestCredentialLabel(t *testing.T) {
	t.Parallel()

	sign := func(claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("unrelated-key"))
		require.NoError(t, err)
		return s
	}

	assert.Equal(t, "opaque", credentialLabel("not-a-jwt"))
	assert.Equal(t, "jti:abc", credentialLabel(sign(jwt.MapClaims{"jti": "abc", "user_id": 20})))
	assert.Equal(t, "token_id:2025", credentialLabel(sign(jwt.MapClaims{"token_id": 2025})))
	assert.Equal(t, "jwt", credentialLabel(sign(jwt.MapClaims{"user_id": 20})))
}
