package remote

import (
	"fmt"

	"github.com/avdeevsv/screenpad/internal/shared"
)

// shareTokenBytes gives 32 hex characters of entropy per token.
const shareTokenBytes = 16

// NewShareToken generates an unguessable share token. It fails loudly when
// the secure random source is unavailable; a share link must never come
// from a weak generator.
func NewShareToken() (string, error) {
	token, err := shared.MakeRandHexString(shareTokenBytes)
	if err != nil {
		return "", fmt.Errorf("no secure random source available: %w", err)
	}
	return token, nil
}
