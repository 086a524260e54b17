package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tgbridge/relay-server-go/internal/model"
)

type MessageRepository interface {
	Create(ctx context.Context, params model.CreateMessageParams) (*model.Message, error)
	FindByID(ctx context.Context, id string) (*model.Message, error)
	FindByAccountID(ctx context.Context, accountID string) ([]model.Message, error)
	MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) error
}

type messageRepo struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, params model.CreateMessageParams) (*model.Message, error) {
	var msg model.Message
	err := r.db.GetContext(ctx, &msg, `
		INSERT INTO messages (id, account_id, content, delivered_to_telegram)
		VALUES ($1, $2, $3, FALSE)
		RETURNING *
	`, uuid.NewString(), params.AccountID, params.Content)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepo) FindByID(ctx context.Context, id string) (*model.Message, error) {
	var msg model.Message
	err := r.db.GetContext(ctx, &msg, `SELECT * FROM messages WHERE id = $1`, id)
	return HandleNotFound(&msg, err)
}

func (r *messageRepo) FindByAccountID(ctx context.Context, accountID string) ([]model.Message, error) {
	var msgs []model.Message
	err := r.db.SelectContext(ctx, &msgs, `
		SELECT * FROM messages
		WHERE account_id = $1
		ORDER BY sent_at DESC
	`, accountID)
	return msgs, err
}

func (r *messageRepo) MarkDelivered(ctx context.Context, id string, deliveredAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE messages SET
			delivered_to_telegram = TRUE,
			delivered_at = $2
		WHERE id = $1
	`, id, deliveredAt)
	return err
}
