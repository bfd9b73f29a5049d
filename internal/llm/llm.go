package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Generator drafts the descargo letter from a composed prompt.
type Generator interface {
	GenerateLetter(ctx context.Context, prompt string) (string, error)
}

// ErrGenerationFailed is the only error generators expose to callers.
var ErrGenerationFailed = errors.New("generation failed")

// PromptHash identifies a prompt in logs without recording its content.
func PromptHash(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
