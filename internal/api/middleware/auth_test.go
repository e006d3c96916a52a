package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/teamline-app/teamline/internal/auth"
)

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		query  string
		want   string
	}{
		{"bearer header", "Bearer abc123", "", "abc123"},
		{"header wins over query", "Bearer abc123", "qqq", "abc123"},
		{"query fallback", "", "qqq", "qqq"},
		{"non-bearer header ignored", "Basic abc123", "qqq", "qqq"},
		{"nothing", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/ws"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			r := httptest.NewRequest("GET", target, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := TokenFromRequest(r); got != tt.want {
				t.Errorf("TokenFromRequest = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	authn := auth.NewAuthenticator("test-secret", "teamline", time.Hour)
	mw := NewAuthMiddleware(authn)

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	token, err := authn.GenerateToken("user-42", "alice")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	t.Run("valid token", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/chats", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		mw.RequireAuth(next).ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if gotUserID != "user-42" {
			t.Errorf("context user id = %q, want user-42", gotUserID)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/chats", nil)
		w := httptest.NewRecorder()
		mw.RequireAuth(next).ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("tampered token", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/chats", nil)
		r.Header.Set("Authorization", "Bearer "+token+"x")
		w := httptest.NewRecorder()
		mw.RequireAuth(next).ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})
}
