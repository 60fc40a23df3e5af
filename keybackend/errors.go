package keybackend

import "errors"

// ErrInvalidKey is returned when a configured key cannot be decoded into a
// KeySize byte key.
var ErrInvalidKey = errors.New("invalid CSRF key")
