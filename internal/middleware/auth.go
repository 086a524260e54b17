package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tgbridge/relay-server-go/internal/auth"
	apperrors "github.com/tgbridge/relay-server-go/internal/errors"
	"github.com/tgbridge/relay-server-go/internal/httputil"
)

type contextKey string

const AccountIDContextKey contextKey = "accountId"

// GetAccountID returns the authenticated account id, or "" when absent.
func GetAccountID(ctx context.Context) string {
	if id, ok := ctx.Value(AccountIDContextKey).(string); ok {
		return id
	}
	return ""
}

type AuthMiddleware struct {
	tokens *auth.TokenManager
}

func NewAuthMiddleware(tokens *auth.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			httputil.WriteError(w, apperrors.Unauthorized("Missing authentication token"))
			return
		}

		claims, err := m.tokens.Validate(token)
		if err != nil {
			log.Warn().Msg("auth middleware: invalid token attempt")
			httputil.WriteError(w, apperrors.Unauthorized("Invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), AccountIDContextKey, claims.AccountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
