package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tgbridge/relay-server-go/internal/auth"
)

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret-test-secret-test-1234", time.Hour)

	t.Run("allows request with valid bearer token", func(t *testing.T) {
		token, err := tokens.Generate("acc-123")
		if err != nil {
			t.Fatal(err)
		}

		middleware := NewAuthMiddleware(tokens)
		handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "acc-123", GetAccountID(r.Context()))
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects request without token", func(t *testing.T) {
		middleware := NewAuthMiddleware(tokens)
		handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		req := httptest.NewRequest("GET", "/test", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects request with garbage token", func(t *testing.T) {
		middleware := NewAuthMiddleware(tokens)
		handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects token signed with a different secret", func(t *testing.T) {
		other := auth.NewTokenManager("another-secret-another-secret-42", time.Hour)
		token, err := other.Generate("acc-123")
		if err != nil {
			t.Fatal(err)
		}

		middleware := NewAuthMiddleware(tokens)
		handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects non-bearer authorization header", func(t *testing.T) {
		middleware := NewAuthMiddleware(tokens)
		handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGetAccountID(t *testing.T) {
	t.Run("returns account id from context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), AccountIDContextKey, "acc-1")
		assert.Equal(t, "acc-1", GetAccountID(ctx))
	})

	t.Run("returns empty string when absent", func(t *testing.T) {
		assert.Equal(t, "", GetAccountID(context.Background()))
	})
}
