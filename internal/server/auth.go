package server

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"alertsmis/pkg/types"

	"github.com/gorilla/securecookie"
)

const sessionMaxAge = 12 * time.Hour

// SessionCodec builds the signed (and, with a block key, encrypted) codec for
// the caller session cookie from the base64 keys in config.
func SessionCodec(config *types.Config) (*securecookie.SecureCookie, error) {
	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cookie hash key: %w", err)
	}
	if len(hashKey) == 0 {
		return nil, fmt.Errorf("cookie hash key is required")
	}

	var blockKey []byte
	if config.CookieBlockKey != "" {
		blockKey, err = base64.StdEncoding.DecodeString(config.CookieBlockKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode cookie block key: %w", err)
		}
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(sessionMaxAge.Seconds()))

	return codec, nil
}

// EncodeCaller produces a cookie value LoadCaller will accept.
func EncodeCaller(codec *securecookie.SecureCookie, name string, caller *types.Caller) (string, error) {
	value, err := codec.Encode(name, caller)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}
	return value, nil
}

// SessionCookie wraps an encoded caller in the cookie the server expects.
func SessionCookie(config *types.Config, value string) *http.Cookie {
	return &http.Cookie{
		Name:     config.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   config.Environment == "production",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionMaxAge.Seconds()),
	}
}
