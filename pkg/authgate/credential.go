package authgate

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// credentialLabel はログ出力用に資格情報を識別するラベルを返す。
// 資格情報そのものはログに残さない。JWTであれば署名を検証せずに
// jti または token_id クレームを取り出す。検証は検証サービスの責務。
func credentialLabel(credential string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return "opaque"
	}
	if jti, ok := claims["jti"].(string); ok && jti != "" {
		return "jti:" + jti
	}
	if id, ok := claims["token_id"].(float64); ok {
		return "token_id:" + strconv.FormatInt(int64(id), 10)
	}
	return "jwt"
}
