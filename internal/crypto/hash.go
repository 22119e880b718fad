package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashRounds применяет SHA-256 к data указанное количество раз.
// rounds < 1 трактуется как один раунд.
func HashRounds(data []byte, rounds int) [sha256.Size]byte {
	sum := sha256.Sum256(data)
	for i := 1; i < rounds; i++ {
		sum = sha256.Sum256(sum[:])
	}
	return sum
}

// Fingerprint returns a short, non-reversible tag for s suitable for logs
// and for binding a payload to its owner.
func Fingerprint(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}
