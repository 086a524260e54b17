package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/tgbridge/relay-server-go/internal/audit"
	apperrors "github.com/tgbridge/relay-server-go/internal/errors"
	"github.com/tgbridge/relay-server-go/internal/httputil"
	"github.com/tgbridge/relay-server-go/internal/middleware"
	"github.com/tgbridge/relay-server-go/internal/service"
)

type TelegramHandler struct {
	tokenService *service.TokenService
	relayService *service.RelayService
}

func NewTelegramHandler(
	tokenService *service.TokenService,
	relayService *service.RelayService,
) *TelegramHandler {
	return &TelegramHandler{
		tokenService: tokenService,
		relayService: relayService,
	}
}

func (h *TelegramHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/token/generate", h.GenerateToken)
	r.Post("/message/send", h.SendMessage)
	r.Get("/messages", h.ListMessages)
	r.Get("/tokens", h.ListTokens)

	return r
}

// POST /api/telegram/token/generate
// Issues a fresh pairing token; any previously active token becomes inactive.
func (h *TelegramHandler) GenerateToken(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		httputil.WriteError(w, apperrors.Unauthorized("Unauthorized"))
		return
	}

	token, err := h.tokenService.Issue(r.Context(), accountID)
	if err != nil {
		log.Error().Err(err).Str("accountId", accountID).Msg("failed to issue pairing token")
		httputil.WriteError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventTokenIssue,
		AccountID: accountID,
		Details:   map[string]interface{}{"tokenId": token.ID},
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"code":             token.Code,
		"expiresInSeconds": int(time.Until(token.ExpiresAt).Seconds()),
	})
}

// POST /api/telegram/message/send
func (h *TelegramHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		httputil.WriteError(w, apperrors.Unauthorized("Unauthorized"))
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.ValidationError("Invalid request body"))
		return
	}
	if req.Message == "" {
		httputil.WriteError(w, apperrors.MissingRequired("message"))
		return
	}

	if err := h.relayService.SendMessage(r.Context(), accountID, req.Message); err != nil {
		httputil.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GET /api/telegram/messages
func (h *TelegramHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		httputil.WriteError(w, apperrors.Unauthorized("Unauthorized"))
		return
	}

	msgs, err := h.relayService.ListMessages(r.Context(), accountID)
	if err != nil {
		log.Error().Err(err).Str("accountId", accountID).Msg("failed to list messages")
		httputil.WriteError(w, err)
		return
	}

	formatted := make([]map[string]any, len(msgs))
	for i, msg := range msgs {
		formatted[i] = formatMessage(msg)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"messages": formatted,
		"total":    len(formatted),
	})
}

// GET /api/telegram/tokens
func (h *TelegramHandler) ListTokens(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	if accountID == "" {
		httputil.WriteError(w, apperrors.Unauthorized("Unauthorized"))
		return
	}

	tokens, err := h.tokenService.ListTokens(r.Context(), accountID)
	if err != nil {
		log.Error().Err(err).Str("accountId", accountID).Msg("failed to list tokens")
		httputil.WriteError(w, err)
		return
	}

	formatted := make([]map[string]any, len(tokens))
	for i, token := range tokens {
		formatted[i] = formatToken(token)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tokens": formatted,
		"total":  len(formatted),
	})
}
