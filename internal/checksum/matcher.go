package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Registry remembers fingerprints of uploaded roster files so a file
// submitted twice is flagged instead of inserting duplicate clients.
type Registry struct {
	mu   sync.Mutex
	seen map[string]string // fingerprint -> original filename
}

func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]string)}
}

// Fingerprint returns the hex SHA-256 of the payload.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Remember records the payload and reports whether it was already
// uploaded, returning the filename of the first upload when it was.
func (r *Registry) Remember(data []byte, filename string) (duplicate bool, firstFilename string) {
	fp := Fingerprint(data)
	r.mu.Lock()
	defer r.mu.Unlock()
	if first, ok := r.seen[fp]; ok {
		return true, first
	}
	r.seen[fp] = filename
	return false, ""
}
