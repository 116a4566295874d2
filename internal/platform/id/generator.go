package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// New returns a sortable unique identifier: a nanosecond timestamp prefix
// followed by random hex. Collisions would need the same nanosecond and the
// same 8 random bytes.
func New(prefix string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; degrade to a
		// timestamp-only id rather than panic inside request handling.
		return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
	}

	return fmt.Sprintf("%s_%d%s", prefix, time.Now().UnixNano(), hex.EncodeToString(buf))
}
