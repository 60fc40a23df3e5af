// Package keybackend loads the authentication key protecting CSRF cookies.
package keybackend

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// KeySize is the length of a CSRF authentication key in bytes.
const KeySize = 32

// GenerateKey returns a new random key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// EncodeKey returns the hex form of key, as written by WriteKeyFile.
func EncodeKey(key []byte) string {
	return hex.EncodeToString(key)
}

// DecodeKey accepts a key in hex or in standard, URL safe or raw base64.
func DecodeKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)

	if len(s) == hex.EncodedLen(KeySize) {
		if key, err := hex.DecodeString(s); err == nil {
			return key, nil
		}
	}

	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	} {
		key, err := enc.DecodeString(s)
		if err == nil && len(key) == KeySize {
			return key, nil
		}
	}

	return nil, fmt.Errorf("%w: want %d bytes encoded as hex or base64", ErrInvalidKey, KeySize)
}
