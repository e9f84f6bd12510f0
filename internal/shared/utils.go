// Package shared provides small utilities used by both the sync core and
// the CLI surface.
package shared

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString generates a random hexadecimal string from size random
// bytes, so the resulting string is twice as long as size. It returns an
// error if the system's secure random source fails; callers must treat that
// as fatal for token generation rather than falling back to a weaker source.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
