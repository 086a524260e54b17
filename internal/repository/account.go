package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tgbridge/relay-server-go/internal/model"
)

type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*model.Account, error)
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error)
}

type accountRepo struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	var acc model.Account
	err := r.db.GetContext(ctx, &acc, `SELECT * FROM accounts WHERE id = $1`, id)
	return HandleNotFound(&acc, err)
}

func (r *accountRepo) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	var acc model.Account
	err := r.db.GetContext(ctx, &acc, `SELECT * FROM accounts WHERE username = $1`, username)
	return HandleNotFound(&acc, err)
}

func (r *accountRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)
	`, username)
	return exists, err
}

func (r *accountRepo) Create(ctx context.Context, params model.CreateAccountParams) (*model.Account, error) {
	var acc model.Account
	err := r.db.GetContext(ctx, &acc, `
		INSERT INTO accounts (id, username, password_hash, email, name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, uuid.NewString(), params.Username, params.PasswordHash, params.Email, params.Name)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}
