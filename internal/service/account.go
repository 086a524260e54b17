package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/tgbridge/relay-server-go/internal/audit"
	"github.com/tgbridge/relay-server-go/internal/auth"
	apperrors "github.com/tgbridge/relay-server-go/internal/errors"
	"github.com/tgbridge/relay-server-go/internal/model"
	"github.com/tgbridge/relay-server-go/internal/repository"
)

type RegisterParams struct {
	Username string
	Password string
	Email    string
	Name     string
}

type AuthResult struct {
	Token    string
	Username string
}

type AccountService struct {
	accountRepo repository.AccountRepository
	tokens      *auth.TokenManager
}

func NewAccountService(accountRepo repository.AccountRepository, tokens *auth.TokenManager) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		tokens:      tokens,
	}
}

func (s *AccountService) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if params.Username == "" {
		return nil, apperrors.MissingRequired("username")
	}
	if params.Password == "" {
		return nil, apperrors.MissingRequired("password")
	}

	exists, err := s.accountRepo.ExistsByUsername(ctx, params.Username)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if exists {
		return nil, apperrors.AlreadyExists("Username")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password").WithCause(err)
	}

	account, err := s.accountRepo.Create(ctx, model.CreateAccountParams{
		Username:     params.Username,
		PasswordHash: string(hash),
		Email:        params.Email,
		Name:         params.Name,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	token, err := s.tokens.Generate(account.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue credential").WithCause(err)
	}

	audit.Log(ctx, audit.Event{
		Type:      audit.EventAccountRegister,
		AccountID: account.ID,
		Details:   map[string]interface{}{"username": account.Username},
	})

	log.Info().Str("accountId", account.ID).Str("username", account.Username).Msg("account registered")

	return &AuthResult{Token: token, Username: account.Username}, nil
}

func (s *AccountService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	account, err := s.accountRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if account == nil {
		audit.Log(ctx, audit.Event{
			Type:    audit.EventLoginFailure,
			Details: map[string]interface{}{"username": username},
		})
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		audit.Log(ctx, audit.Event{
			Type:      audit.EventLoginFailure,
			AccountID: account.ID,
			Details:   map[string]interface{}{"username": username},
		})
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	token, err := s.tokens.Generate(account.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue credential").WithCause(err)
	}

	audit.Log(ctx, audit.Event{
		Type:      audit.EventLoginSuccess,
		AccountID: account.ID,
	})

	return &AuthResult{Token: token, Username: account.Username}, nil
}
