package model

import (
	"time"
)

// PairingToken links an account to a Telegram chat. At most one token per
// account is active; binding flips bound exactly once and records the chat.
type PairingToken struct {
	ID        string     `db:"id" json:"id"`
	AccountID string     `db:"account_id" json:"accountId"`
	Code      string     `db:"code" json:"code"`
	ChatID    *int64     `db:"chat_id" json:"chatId,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	ExpiresAt time.Time  `db:"expires_at" json:"expiresAt"`
	BoundAt   *time.Time `db:"bound_at" json:"boundAt,omitempty"`
	Active    bool       `db:"active" json:"active"`
	Bound     bool       `db:"bound" json:"bound"`
}

// Expired reports whether the token's pairing window has passed. Expiry is
// evaluated lazily at use; nothing sweeps expired rows.
func (t *PairingToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

type IssueTokenParams struct {
	AccountID string
	Code      string
	ExpiresAt time.Time
}
