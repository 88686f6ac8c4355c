package session

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"reqman-cli/internal/model"
)

// IdentityFromToken extracts the authenticated identity from the token's
// payload without verifying the signature. The backend does not expose a
// whoami endpoint, so the claims are the only source of identity on this
// side; they are display metadata here, never an authorization input.
//
// When the token is not a decodable JWT the second return is false and the
// result is a synthetic identity carrying only the login username, so the
// caller can flag the degraded state instead of silently masking it.
func IdentityFromToken(token, userName string) (model.AuthenticatedUser, bool) {
	fallback := model.AuthenticatedUser{UserName: strings.TrimSpace(userName)}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fallback, false
	}

	user := model.AuthenticatedUser{
		ID:       claimInt(claims, "id"),
		Email:    claimString(claims, "email"),
		UserName: claimString(claims, "userName"),
	}
	if v := claimString(claims, "mobileNo"); v != "" {
		user.MobileNo = &v
	}
	if v := claimString(claims, "phoneCode"); v != "" {
		user.PhoneCode = &v
	}
	if user.UserName == "" {
		user.UserName = fallback.UserName
	}
	return user, true
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func claimInt(claims jwt.MapClaims, key string) int {
	// JSON numbers decode as float64.
	if v, ok := claims[key].(float64); ok {
		return int(v)
	}
	return 0
}
