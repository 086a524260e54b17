package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/tgbridge/relay-server-go/internal/errors"
	"github.com/tgbridge/relay-server-go/internal/model"
	"github.com/tgbridge/relay-server-go/internal/repository"
	"github.com/tgbridge/relay-server-go/internal/util"
)

// TokenService owns the pairing-token lifecycle: issuing a fresh code
// supersedes whatever token was active before, so at any moment an account
// has at most one token eligible for binding.
type TokenService struct {
	accountRepo repository.AccountRepository
	tokenRepo   repository.TokenRepository
	tokenTTL    time.Duration
}

func NewTokenService(
	accountRepo repository.AccountRepository,
	tokenRepo repository.TokenRepository,
	tokenTTL time.Duration,
) *TokenService {
	return &TokenService{
		accountRepo: accountRepo,
		tokenRepo:   tokenRepo,
		tokenTTL:    tokenTTL,
	}
}

func (s *TokenService) Issue(ctx context.Context, accountID string) (*model.PairingToken, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if account == nil {
		return nil, apperrors.NotFound("Account")
	}

	code, err := util.GeneratePairingCode()
	if err != nil {
		return nil, apperrors.Internal("Failed to generate pairing code").WithCause(err)
	}

	// A code collision violates the unique constraint and fails the insert.
	// With 80 bits of entropy that is not worth a retry loop.
	token, err := s.tokenRepo.Issue(ctx, model.IssueTokenParams{
		AccountID: accountID,
		Code:      code,
		ExpiresAt: time.Now().Add(s.tokenTTL),
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().
		Str("tokenId", token.ID).
		Str("accountId", accountID).
		Str("code", util.MaskCode(token.Code)).
		Time("expiresAt", token.ExpiresAt).
		Msg("pairing token issued")

	return token, nil
}

func (s *TokenService) ListTokens(ctx context.Context, accountID string) ([]model.PairingToken, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if account == nil {
		return nil, apperrors.NotFound("Account")
	}

	tokens, err := s.tokenRepo.FindByAccountID(ctx, accountID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return tokens, nil
}
