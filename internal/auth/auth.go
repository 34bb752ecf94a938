package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type ctxKey string

const (
	sessionCookieName = "session"
	operatorCtxKey    = ctxKey("operator")
)

var secret = "devsessionsecret"

// SetSecret configures the session signing secret. Call once at bootstrap,
// before any session is created or parsed.
func SetSecret(s string) {
	if s != "" {
		secret = s
	}
}

// CreateSession sets a signed cookie carrying the operator name.
func CreateSession(w http.ResponseWriter, operator string) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(operator))
	value := payload + "." + sign(payload)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(14 * 24 * time.Hour),
	})
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates the cookie signature and returns the operator name.
func ParseSession(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 2 {
		return "", false
	}
	payload, sig := parts[0], parts[1]
	if !hmac.Equal([]byte(sig), []byte(sign(payload))) {
		return "", false
	}
	name, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil || len(name) == 0 {
		return "", false
	}
	return string(name), true
}

func sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// WithOperator stores the operator name in context.
func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorCtxKey, operator)
}

// OperatorFromContext extracts the operator name.
func OperatorFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(operatorCtxKey)
	if v == nil {
		return "", false
	}
	name, ok := v.(string)
	return name, ok && name != ""
}

// IsAuthenticated reports whether the request carries a valid session.
func IsAuthenticated(ctx context.Context) bool {
	_, ok := OperatorFromContext(ctx)
	return ok
}

// Middleware attaches the operator to the request context if a valid
// session cookie is present.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if op, ok := ParseSession(r); ok {
			r = r.WithContext(WithOperator(r.Context(), op))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth redirects to /login if not authenticated (HTML) or returns 401 JSON.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAuthenticated(r.Context()) {
			accept := r.Header.Get("Accept")
			if strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html") {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error":"unauthorized"}`)
				return
			}
			http.Redirect(w, r, "/login?next="+r.URL.Path, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Credentials holds the configured operator login.
type Credentials struct {
	User     string
	Pass     string
	PassHash string
}

// Verify checks a login attempt. When a bcrypt hash is configured it takes
// precedence over the plaintext password.
func (c Credentials) Verify(user, pass string) bool {
	if subtle.ConstantTimeCompare([]byte(user), []byte(c.User)) != 1 {
		return false
	}
	if c.PassHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(c.PassHash), []byte(pass)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(pass), []byte(c.Pass)) == 1
}
