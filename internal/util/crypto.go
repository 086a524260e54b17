package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Unambiguous charset: no O/I/0/1. 32 symbols = 5 bits each.
const pairingCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	pairingCodeGroups    = 4
	pairingCodeGroupSize = 4
)

// GeneratePairingCode returns a code in the form XXXX-XXXX-XXXX-XXXX.
// 16 symbols from a 32-char alphabet is 80 bits of entropy, which makes both
// guessing within the token lifetime and a code collision negligible. The
// pairing_tokens.code unique constraint turns a collision into a hard insert
// error rather than a retry loop.
func GeneratePairingCode() (string, error) {
	chars := []byte(pairingCodeChars)
	groups := make([]string, pairingCodeGroups)

	for g := 0; g < pairingCodeGroups; g++ {
		group := make([]byte, pairingCodeGroupSize)
		for i := 0; i < pairingCodeGroupSize; i++ {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
			if err != nil {
				return "", fmt.Errorf("generate pairing code: %w", err)
			}
			group[i] = chars[n.Int64()]
		}
		groups[g] = string(group)
	}

	return strings.Join(groups, "-"), nil
}

// MaskCode hides most of a pairing code for log output.
func MaskCode(code string) string {
	if len(code) <= 4 {
		return "****"
	}
	return code[:4] + "-****"
}
