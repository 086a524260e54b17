package model

import (
	"time"
)

// Message is recorded before any Telegram send is attempted, so a transport
// failure leaves an auditable undelivered row instead of losing the message.
type Message struct {
	ID                  string     `db:"id" json:"id"`
	AccountID           string     `db:"account_id" json:"accountId"`
	Content             string     `db:"content" json:"content"`
	SentAt              time.Time  `db:"sent_at" json:"sentAt"`
	DeliveredToTelegram bool       `db:"delivered_to_telegram" json:"deliveredToTelegram"`
	DeliveredAt         *time.Time `db:"delivered_at" json:"deliveredAt,omitempty"`
}

type CreateMessageParams struct {
	AccountID string
	Content   string
}
