package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPairingToken_Expired(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := PairingToken{
		CreatedAt: issued,
		ExpiresAt: issued.Add(10 * time.Minute),
	}

	tests := []struct {
		name    string
		at      time.Time
		expired bool
	}{
		{"just issued", issued, false},
		{"one minute before expiry", issued.Add(9 * time.Minute), false},
		{"exactly at expiry", issued.Add(10 * time.Minute), false},
		{"one second past expiry", issued.Add(10*time.Minute + time.Second), true},
		{"eleven minutes after issue", issued.Add(11 * time.Minute), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expired, token.Expired(tc.at))
		})
	}
}
