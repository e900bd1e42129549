package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// apiKeySet loads the accepted gateway keys from TRIBUNE_API_KEYS
// (comma separated).
func apiKeySet() map[string]bool {
	keys := make(map[string]bool)
	for _, k := range strings.Split(os.Getenv("TRIBUNE_API_KEYS"), ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			keys[k] = true
		}
	}
	return keys
}

// AuthMiddleware gates the API: the gateway authenticates with an
// X-API-Key header; admin tooling may instead present a Bearer token
// signed with TRIBUNE_JWT_SECRET.
func AuthMiddleware() func(http.Handler) http.Handler {
	keys := apiKeySet()
	secret := []byte(os.Getenv("TRIBUNE_JWT_SECRET"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			apiKey := r.Header.Get("X-API-Key")

			switch {
			case apiKey != "":
				if !keys[apiKey] {
					http.Error(w, "Unauthorized. Invalid API Key", http.StatusUnauthorized)
					return
				}

			case strings.HasPrefix(authHeader, "Bearer "):
				tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
				token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
					if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, jwt.ErrSignatureInvalid
					}
					return secret, nil
				})
				if err != nil || !token.Valid || len(secret) == 0 {
					http.Error(w, "Unauthorized. Invalid token", http.StatusUnauthorized)
					return
				}

			default:
				http.Error(w, "Unauthorized. Missing credentials", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
