package paradox

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashPayload is the canonical, timestamp-free body covered by the content hash.
type hashPayload struct {
	Input     Input    `json:"input"`
	Category  Category `json:"category"`
	Statement string   `json:"statement"`
	Metrics   Metrics  `json:"metrics"`
	Overlay   []string `json:"overlay"`
}

// ContentHash returns the SHA-256 hex digest of the canonical payload.
func ContentHash(in Input, c Category, statement string, m Metrics, overlay []string) (string, error) {
	data, err := json.Marshal(hashPayload{
		Input:     in,
		Category:  c,
		Statement: statement,
		Metrics:   m,
		Overlay:   overlay,
	})
	if err != nil {
		return "", fmt.Errorf("marshal hash payload: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes the hash of s against the input that produced it.
func Verify(in Input, s Synthesis) (bool, error) {
	h, err := ContentHash(in.sanitized(), s.Type, s.Statement, s.Metrics, s.Overlay)
	if err != nil {
		return false, err
	}
	return h == s.ContentHash, nil
}
