package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tgbridge/relay-server-go/internal/audit"
	apperrors "github.com/tgbridge/relay-server-go/internal/errors"
	"github.com/tgbridge/relay-server-go/internal/model"
	"github.com/tgbridge/relay-server-go/internal/repository"
)

// RelayService forwards an account's message to its bound Telegram chat.
// The message row is persisted before the transport call, so a failed send
// leaves an undelivered record instead of losing the message.
type RelayService struct {
	accountRepo repository.AccountRepository
	tokenRepo   repository.TokenRepository
	messageRepo repository.MessageRepository
	transport   Transport
}

func NewRelayService(
	accountRepo repository.AccountRepository,
	tokenRepo repository.TokenRepository,
	messageRepo repository.MessageRepository,
	transport Transport,
) *RelayService {
	return &RelayService{
		accountRepo: accountRepo,
		tokenRepo:   tokenRepo,
		messageRepo: messageRepo,
		transport:   transport,
	}
}

func (s *RelayService) SendMessage(ctx context.Context, accountID, content string) error {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return apperrors.Database(err)
	}
	if account == nil {
		return apperrors.NotFound("Account")
	}

	msg, err := s.messageRepo.Create(ctx, model.CreateMessageParams{
		AccountID: accountID,
		Content:   content,
	})
	if err != nil {
		return apperrors.Database(err)
	}

	// The binding is resolved through the currently active token, not the
	// token that originally completed the pairing. Issuing a new token after
	// a successful bind therefore makes the chat unreachable until it is
	// re-paired.
	token, err := s.tokenRepo.FindActiveByAccountID(ctx, accountID)
	if err != nil {
		return apperrors.Database(err)
	}
	if token == nil {
		return apperrors.NoActiveToken()
	}

	if !token.Bound || token.ChatID == nil {
		return apperrors.TokenNotBound()
	}

	envelope := fmt.Sprintf("%s, I received your message:\n%s", account.Name, content)

	if err := s.transport.SendText(ctx, *token.ChatID, envelope); err != nil {
		audit.Log(ctx, audit.Event{
			Type:      audit.EventRelayFailed,
			AccountID: accountID,
			Details: map[string]interface{}{
				"messageId": msg.ID,
				"chatId":    *token.ChatID,
			},
		})
		log.Error().
			Err(err).
			Str("messageId", msg.ID).
			Str("accountId", accountID).
			Int64("chatId", *token.ChatID).
			Msg("telegram delivery failed; message kept undelivered")
		return apperrors.Transport(err)
	}

	if err := s.messageRepo.MarkDelivered(ctx, msg.ID, time.Now()); err != nil {
		return apperrors.Database(err)
	}

	log.Info().
		Str("messageId", msg.ID).
		Str("accountId", accountID).
		Int64("chatId", *token.ChatID).
		Msg("message relayed to telegram")

	return nil
}

// ListMessages returns the account's relay history, most recent first.
func (s *RelayService) ListMessages(ctx context.Context, accountID string) ([]model.Message, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if account == nil {
		return nil, apperrors.NotFound("Account")
	}

	msgs, err := s.messageRepo.FindByAccountID(ctx, accountID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return msgs, nil
}
