package handlers

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newProtectedRouter(t *testing.T) *mux.Router {
	t.Helper()
	auth, err := NewAuthMiddleware(base64.StdEncoding.EncodeToString(testSecret))
	if err != nil {
		t.Fatalf("NewAuthMiddleware() unexpected error: %v", err)
	}

	router := mux.NewRouter()
	router.Use(auth)
	router.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")
	return router
}

func signToken(t *testing.T, method jwt.SigningMethod, expiry time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(method, jwt.MapClaims{
		"sub": "user-7",
		"exp": expiry.Unix(),
	})
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{
			name:       "valid token",
			authHeader: "Bearer {valid}",
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing bearer prefix",
			authHeader: "{valid}",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not.a.jwt",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			authHeader: "Bearer {expired}",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong signing algorithm",
			authHeader: "Bearer {hs256}",
			wantStatus: http.StatusUnauthorized,
		},
	}

	router := newProtectedRouter(t)
	valid := signToken(t, jwt.SigningMethodHS512, time.Now().Add(time.Hour))
	expired := signToken(t, jwt.SigningMethodHS512, time.Now().Add(-time.Hour))
	hs256 := signToken(t, jwt.SigningMethodHS256, time.Now().Add(time.Hour))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := tt.authHeader
			header = strings.ReplaceAll(header, "{valid}", valid)
			header = strings.ReplaceAll(header, "{expired}", expired)
			header = strings.ReplaceAll(header, "{hs256}", hs256)

			req := httptest.NewRequest("GET", "/protected", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, expected %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestNewAuthMiddlewareRejectsBadSecret(t *testing.T) {
	if _, err := NewAuthMiddleware("not-valid-base64!!!"); err == nil {
		t.Fatal("NewAuthMiddleware() expected error for undecodable secret")
	}
}
