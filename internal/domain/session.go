package domain

import (
	"fmt"
	"strings"
)

// Session is the read-only wallet session supplied by the caller
type Session struct {
	Address  string
	LoggedIn bool
}

// IsConnected reports whether a wallet is attached to the session
func (s Session) IsConnected() bool {
	return s.LoggedIn && s.Address != ""
}

// addressHexLen is the width of a Flow address in hex digits
const addressHexLen = 16

// NormalizeAddress returns the canonical "0x" + lower-case hex form of a Flow address
// Short addresses are left-padded with zeros, so 0x1 and 0x0000000000000001 are one account.
func NormalizeAddress(address string) (string, error) {
	a := strings.ToLower(strings.TrimSpace(address))
	a = strings.TrimPrefix(a, "0x")

	if a == "" || len(a) > addressHexLen {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	for _, c := range a {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
		}
	}

	return "0x" + strings.Repeat("0", addressHexLen-len(a)) + a, nil
}
