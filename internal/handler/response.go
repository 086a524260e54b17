package handler

import (
	"net/http"
	"time"

	"github.com/tgbridge/relay-server-go/internal/httputil"
	"github.com/tgbridge/relay-server-go/internal/model"
	"github.com/tgbridge/relay-server-go/internal/util"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func formatMessage(msg model.Message) map[string]any {
	return map[string]any{
		"id":                  msg.ID,
		"content":             msg.Content,
		"sentAt":              msg.SentAt.Format(time.RFC3339),
		"deliveredToTelegram": msg.DeliveredToTelegram,
		"deliveredAt":         formatTime(msg.DeliveredAt),
	}
}

// formatToken masks the code: once issued through the generate endpoint the
// full code is never shown again.
func formatToken(token model.PairingToken) map[string]any {
	return map[string]any{
		"id":        token.ID,
		"code":      util.MaskCode(token.Code),
		"createdAt": token.CreatedAt.Format(time.RFC3339),
		"expiresAt": token.ExpiresAt.Format(time.RFC3339),
		"boundAt":   formatTime(token.BoundAt),
		"active":    token.Active,
		"bound":     token.Bound,
	}
}
