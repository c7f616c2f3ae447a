package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashString returns a short stable hex digest, used for content fingerprints
// when a source has no native posting id.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:16])
}
