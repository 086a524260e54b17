package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tgbridge/relay-server-go/internal/database"
	"github.com/tgbridge/relay-server-go/internal/model"
)

type TokenRepository interface {
	// Issue deactivates the account's current active token (if any) and
	// inserts the new one within a single transaction, so there is no window
	// with two active tokens for one account.
	Issue(ctx context.Context, params model.IssueTokenParams) (*model.PairingToken, error)
	FindByCode(ctx context.Context, code string) (*model.PairingToken, error)
	FindActiveByAccountID(ctx context.Context, accountID string) (*model.PairingToken, error)
	FindBoundByChatID(ctx context.Context, chatID int64) (*model.PairingToken, error)
	FindByAccountID(ctx context.Context, accountID string) ([]model.PairingToken, error)
	// Bind flips bound false->true and records the chat id. The update is
	// conditional on bound=false AND active, so exactly one of any concurrent
	// bind attempts wins, and a token deactivated by a concurrent Issue can no
	// longer be bound. Losers get (nil, nil).
	Bind(ctx context.Context, id string, chatID int64, boundAt time.Time) (*model.PairingToken, error)
}

type tokenRepo struct {
	db *database.DB
}

func NewTokenRepository(db *database.DB) TokenRepository {
	return &tokenRepo{db: db}
}

func (r *tokenRepo) Issue(ctx context.Context, params model.IssueTokenParams) (*model.PairingToken, error) {
	var token model.PairingToken

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE pairing_tokens SET active = FALSE
			WHERE account_id = $1 AND active
		`, params.AccountID); err != nil {
			return err
		}

		return tx.GetContext(ctx, &token, `
			INSERT INTO pairing_tokens (id, account_id, code, expires_at, active, bound)
			VALUES ($1, $2, $3, $4, TRUE, FALSE)
			RETURNING *
		`, uuid.NewString(), params.AccountID, params.Code, params.ExpiresAt)
	})
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepo) FindByCode(ctx context.Context, code string) (*model.PairingToken, error) {
	var token model.PairingToken
	err := r.db.GetContext(ctx, &token, `SELECT * FROM pairing_tokens WHERE code = $1`, code)
	return HandleNotFound(&token, err)
}

func (r *tokenRepo) FindActiveByAccountID(ctx context.Context, accountID string) (*model.PairingToken, error) {
	var token model.PairingToken
	err := r.db.GetContext(ctx, &token, `
		SELECT * FROM pairing_tokens
		WHERE account_id = $1 AND active
	`, accountID)
	return HandleNotFound(&token, err)
}

func (r *tokenRepo) FindBoundByChatID(ctx context.Context, chatID int64) (*model.PairingToken, error) {
	var token model.PairingToken
	err := r.db.GetContext(ctx, &token, `
		SELECT * FROM pairing_tokens
		WHERE chat_id = $1 AND bound
		ORDER BY bound_at DESC
		LIMIT 1
	`, chatID)
	return HandleNotFound(&token, err)
}

func (r *tokenRepo) FindByAccountID(ctx context.Context, accountID string) ([]model.PairingToken, error) {
	var tokens []model.PairingToken
	err := r.db.SelectContext(ctx, &tokens, `
		SELECT * FROM pairing_tokens
		WHERE account_id = $1
		ORDER BY created_at DESC
	`, accountID)
	return tokens, err
}

func (r *tokenRepo) Bind(ctx context.Context, id string, chatID int64, boundAt time.Time) (*model.PairingToken, error) {
	var token model.PairingToken
	err := r.db.GetContext(ctx, &token, `
		UPDATE pairing_tokens SET
			bound = TRUE,
			chat_id = $2,
			bound_at = $3
		WHERE id = $1 AND NOT bound AND active
		RETURNING *
	`, id, chatID, boundAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}
