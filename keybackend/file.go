package keybackend

import (
	"fmt"
	"os"
	"path/filepath"
)

// LoadKeyFromFile reads a key written by WriteKeyFile, or any file holding a
// hex or base64 encoded key.
func LoadKeyFromFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	key, err := DecodeKey(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse key file %s: %w", path, err)
	}

	return key, nil
}

// WriteKeyFile stores key hex encoded in a file readable only by its owner.
func WriteKeyFile(path string, key []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf("%w: got %d bytes", ErrInvalidKey, len(key))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create key directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(EncodeKey(key)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}
