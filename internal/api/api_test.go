package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/getupyang/geo-guess-diy/internal/registry"
)

func testToken(t *testing.T, secret []byte, userID, username string) string {
	t.Helper()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}

func TestAuthMiddleware(t *testing.T) {
	api := &API{jwtSecret: []byte("test-secret")}

	var gotUserID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = claimsFrom(r).UserID
	})
	handler := api.authMiddleware(inner)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + testToken(t, []byte("other"), "u1", "Ulla"), http.StatusUnauthorized},
		{"valid token", "Bearer " + testToken(t, []byte("test-secret"), "u1", "Ulla"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = ""
			req := httptest.NewRequest("GET", "/api/collections/col1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Result().StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && gotUserID != "u1" {
				t.Errorf("claims user = %q, want u1", gotUserID)
			}
		})
	}
}

func TestCreateChallengeValidation(t *testing.T) {
	api := &API{}

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"missing image_ref", `{"lat": 1, "lng": 2}`},
		{"missing location", `{"image_ref": "img/a.jpg"}`},
		{"latitude out of range", `{"image_ref": "img/a.jpg", "lat": 120, "lng": 0}`},
		{"longitude out of range", `{"image_ref": "img/a.jpg", "lat": 0, "lng": 200}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/challenges", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			api.handleCreateChallenge(w, req)

			if w.Result().StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
			}
		})
	}
}

func TestGuessWithoutSessionIs404(t *testing.T) {
	api := &API{registry: registry.New(nil, nil)}

	req := httptest.NewRequest("POST", "/api/collections/col1/playthrough/guess",
		strings.NewReader(`{"lat": 1, "lng": 2}`))
	req = req.WithContext(context.WithValue(req.Context(), claimsKey{}, &Claims{UserID: "u1"}))
	w := httptest.NewRecorder()
	api.handleSubmitGuess(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}
