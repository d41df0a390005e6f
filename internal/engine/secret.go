package engine

import (
	"crypto/rand"
	"encoding/base64"
)

// generateSecret returns a random base64url-encoded string truncated to n
// characters. It reads enough raw bytes to survive the truncation after
// encoding.
func generateSecret(n int) string {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		// crypto/rand.Read only fails if the OS entropy source is broken,
		// which leaves the process in no state to continue.
		panic("engine: entropy failure: " + err.Error())
	}
	encoded := base64.RawURLEncoding.EncodeToString(raw)
	if len(encoded) > n {
		encoded = encoded[:n]
	}
	return encoded
}
