package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func doJSON(t *testing.T, env *testEnv, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv()

	w := doJSON(t, env, "POST", "/auth/signup",
		`{"username":"alice","email":"alice@example.com","password":"s3cret"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", w.Code, w.Body)
	}

	var signup SignupResponse
	if err := json.Unmarshal(w.Body.Bytes(), &signup); err != nil {
		t.Fatalf("invalid signup response: %v", err)
	}
	if signup.ID == "" || signup.Username != "alice" {
		t.Fatalf("unexpected signup response: %+v", signup)
	}

	w = doJSON(t, env, "POST", "/auth/login", `{"username":"alice","password":"s3cret"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body)
	}

	var login LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil {
		t.Fatalf("invalid login response: %v", err)
	}
	if login.UserID != signup.ID {
		t.Errorf("login user id = %q, want %q", login.UserID, signup.ID)
	}
	if login.ExpiresIn <= 0 {
		t.Errorf("expires_in = %d, want > 0", login.ExpiresIn)
	}

	claims, err := env.authn.ValidateToken(login.Token)
	if err != nil {
		t.Fatalf("minted token does not validate: %v", err)
	}
	if claims.UserID != signup.ID {
		t.Errorf("token subject = %q, want %q", claims.UserID, signup.ID)
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	env := newTestEnv()

	body := `{"username":"alice","email":"alice@example.com","password":"s3cret"}`
	if w := doJSON(t, env, "POST", "/auth/signup", body); w.Code != http.StatusCreated {
		t.Fatalf("first signup status = %d", w.Code)
	}
	if w := doJSON(t, env, "POST", "/auth/signup", body); w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup status = %d, want 409", w.Code)
	}
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv()

	tests := []struct {
		name string
		body string
	}{
		{"missing username", `{"password":"s3cret"}`},
		{"missing password", `{"username":"alice"}`},
		{"bad email", `{"username":"alice","email":"not-an-email","password":"s3cret"}`},
		{"invalid json", `{"username":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doJSON(t, env, "POST", "/auth/signup", tt.body); w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv()
	doJSON(t, env, "POST", "/auth/signup", `{"username":"alice","password":"s3cret"}`)

	if w := doJSON(t, env, "POST", "/auth/login", `{"username":"alice","password":"wrong"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	env := newTestEnv()

	if w := doJSON(t, env, "POST", "/auth/login", `{"username":"ghost","password":"s3cret"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
