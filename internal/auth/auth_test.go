package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-signing-secret"

func signToken(t *testing.T, secret string, c claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func validClaims(sub string) claims {
	return claims{
		Email: "nurse@example.org",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func gated(t *testing.T) (http.Handler, *int) {
	t.Helper()
	calls := 0
	handler := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		id, ok := FromContext(r.Context())
		if !ok {
			t.Error("expected identity in context")
		}
		if id.Subject == "" {
			t.Error("expected non-empty subject")
		}
		w.WriteHeader(http.StatusOK)
	}))
	return handler, &calls
}

func TestMiddleware_ValidToken(t *testing.T) {
	handler, calls := gated(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims("user-123")))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if *calls != 1 {
		t.Errorf("expected 1 handler call, got %d", *calls)
	}
}

func TestMiddleware_MissingHeader(t *testing.T) {
	handler, calls := gated(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if *calls != 0 {
		t.Errorf("expected handler never called, got %d calls", *calls)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected JSON error body")
	}
}

func TestMiddleware_WrongScheme(t *testing.T) {
	handler, calls := gated(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if *calls != 0 {
		t.Errorf("expected handler never called, got %d calls", *calls)
	}
}

func TestMiddleware_WrongSecret(t *testing.T) {
	handler, calls := gated(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", validClaims("user-123")))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if *calls != 0 {
		t.Errorf("expected handler never called, got %d calls", *calls)
	}
}

func TestMiddleware_ExpiredToken(t *testing.T) {
	handler, calls := gated(t)

	c := validClaims("user-123")
	c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, c))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if *calls != 0 {
		t.Errorf("expected handler never called, got %d calls", *calls)
	}
}

func TestMiddleware_MissingSubject(t *testing.T) {
	handler, calls := gated(t)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims("")))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if *calls != 0 {
		t.Errorf("expected handler never called, got %d calls", *calls)
	}
}

func TestMiddleware_IdentityClaims(t *testing.T) {
	var got Identity
	handler := Middleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims("user-abc")))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got.Subject != "user-abc" {
		t.Errorf("expected subject user-abc, got %q", got.Subject)
	}
	if got.Email != "nurse@example.org" {
		t.Errorf("expected email nurse@example.org, got %q", got.Email)
	}
}
