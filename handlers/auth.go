package handlers

import (
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

// NewAuthMiddleware verifies HS512 bearer tokens signed with the
// base64-encoded shared secret.
func NewAuthMiddleware(encodedSecret string) (mux.MiddlewareFunc, error) {
	secret, err := base64.StdEncoding.DecodeString(encodedSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JWT secret: %w", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || tokenString == "" {
				writeErrorResponse(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			_, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{"HS512"}))
			if err != nil {
				log.Printf("[ERROR] JWT verification failed: %v", err)
				writeErrorResponse(w, http.StatusUnauthorized, "Invalid or expired JWT token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}
