// Package identity извлекает идентификатор пользователя из OpenID Connect ID token.
//
// Токен получен напрямую от Google вместе с access token, поэтому подпись
// здесь не проверяется: значение используется только как ключ локального кэша.
package identity

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoIdentity is returned when the token carries neither email nor subject
	ErrNoIdentity = errors.New("id token has no usable identity")
	// ErrMalformedToken is returned when the token cannot be parsed
	ErrMalformedToken = errors.New("malformed id token")
)

// Claims - поля ID token, которые нужны клиенту
type Claims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// FromIDToken returns base64(email) when the token has an email claim,
// otherwise the subject. The result matches what api.Client.GetUserID
// resolves for the same account.
func FromIDToken(idToken string) (string, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return "", ErrMalformedToken
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	if claims.Email != "" {
		return base64.StdEncoding.EncodeToString([]byte(claims.Email)), nil
	}
	if claims.Subject != "" {
		return claims.Subject, nil
	}

	return "", ErrNoIdentity
}
