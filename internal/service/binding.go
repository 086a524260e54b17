package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tgbridge/relay-server-go/internal/audit"
	"github.com/tgbridge/relay-server-go/internal/repository"
	"github.com/tgbridge/relay-server-go/internal/util"
)

// Replies sent back into the chat. Every inbound update gets exactly one.
const (
	replyAlreadyUsed = "This pairing code has already been used."
	replyExpired     = "This pairing code has expired. Please generate a new one."
	replyInactive    = "This pairing code is no longer valid."
	replyChatPaired  = "This chat is already linked to an account. You will receive messages from your API."
	replyAskForCode  = "Please send your pairing code to link this chat to your account."
	replyInternal    = "Something went wrong. Please try again later."
)

const fallbackDisplayName = "User"

// BindingService consumes inbound Telegram text updates and completes the
// pairing handshake. It never returns errors to the transport loop; every
// outcome resolves into a single chat reply.
type BindingService struct {
	tokenRepo   repository.TokenRepository
	accountRepo repository.AccountRepository
	transport   Transport
}

func NewBindingService(
	tokenRepo repository.TokenRepository,
	accountRepo repository.AccountRepository,
	transport Transport,
) *BindingService {
	return &BindingService{
		tokenRepo:   tokenRepo,
		accountRepo: accountRepo,
		transport:   transport,
	}
}

// HandleInbound runs the per-token state machine for one (chatID, text)
// update. Lookup is exact-match on the literal text; no normalization.
func (b *BindingService) HandleInbound(ctx context.Context, chatID, senderID int64, text string) {
	log.Debug().
		Int64("chatId", chatID).
		Int64("senderId", senderID).
		Msg("inbound chat update")

	token, err := b.tokenRepo.FindByCode(ctx, text)
	if err != nil {
		log.Error().Err(err).Int64("chatId", chatID).Msg("binding: code lookup failed")
		b.reply(ctx, chatID, replyInternal)
		return
	}

	if token == nil {
		b.handleUnmatched(ctx, chatID)
		return
	}

	switch {
	case token.Bound:
		log.Warn().
			Str("tokenId", token.ID).
			Int64("chatId", chatID).
			Msg("binding attempt on already bound token")
		b.reply(ctx, chatID, replyAlreadyUsed)

	case token.Expired(time.Now()):
		log.Warn().
			Str("tokenId", token.ID).
			Int64("chatId", chatID).
			Msg("binding attempt on expired token")
		b.reply(ctx, chatID, replyExpired)

	case !token.Active:
		log.Warn().
			Str("tokenId", token.ID).
			Int64("chatId", chatID).
			Msg("binding attempt on superseded token")
		b.reply(ctx, chatID, replyInactive)

	default:
		b.bind(ctx, chatID, token.ID, token.AccountID, token.Code)
	}
}

func (b *BindingService) bind(ctx context.Context, chatID int64, tokenID, accountID, code string) {
	bound, err := b.tokenRepo.Bind(ctx, tokenID, chatID, time.Now())
	if err != nil {
		log.Error().Err(err).Str("tokenId", tokenID).Msg("binding: conditional update failed")
		b.reply(ctx, chatID, replyInternal)
		return
	}

	// A nil result means a concurrent attempt won the bound=false->true
	// transition first; this one is rejected, never overwriting the chat id.
	if bound == nil {
		log.Warn().
			Str("tokenId", tokenID).
			Int64("chatId", chatID).
			Msg("binding lost race to concurrent attempt")
		b.reply(ctx, chatID, replyAlreadyUsed)
		return
	}

	name := fallbackDisplayName
	if account, err := b.accountRepo.FindByID(ctx, accountID); err == nil && account != nil {
		name = account.Name
	} else if err != nil {
		log.Error().Err(err).Str("accountId", accountID).Msg("binding: account lookup failed")
	}

	audit.Log(ctx, audit.Event{
		Type:      audit.EventChatBound,
		AccountID: accountID,
		Details: map[string]interface{}{
			"tokenId": tokenID,
			"chatId":  chatID,
			"code":    util.MaskCode(code),
		},
	})

	log.Info().
		Str("tokenId", tokenID).
		Str("accountId", accountID).
		Int64("chatId", chatID).
		Msg("chat bound to pairing token")

	confirmation := fmt.Sprintf(
		"✅ Pairing successful!\n\n👤 Account: %s\n📅 Linked at: %s\n\nYou will now receive messages from your API.",
		name,
		bound.BoundAt.Format(time.RFC1123),
	)
	b.reply(ctx, chatID, confirmation)
}

func (b *BindingService) handleUnmatched(ctx context.Context, chatID int64) {
	existing, err := b.tokenRepo.FindBoundByChatID(ctx, chatID)
	if err != nil {
		log.Error().Err(err).Int64("chatId", chatID).Msg("binding: chat lookup failed")
		b.reply(ctx, chatID, replyInternal)
		return
	}

	if existing != nil {
		b.reply(ctx, chatID, replyChatPaired)
	} else {
		b.reply(ctx, chatID, replyAskForCode)
	}
}

// reply delivers the user-facing outcome. A failed reply is logged and
// dropped; the state transition it reports has already committed.
func (b *BindingService) reply(ctx context.Context, chatID int64, text string) {
	if err := b.transport.SendText(ctx, chatID, text); err != nil {
		log.Error().Err(err).Int64("chatId", chatID).Msg("failed to send chat reply")
	}
}
