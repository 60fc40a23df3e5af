package keybackend

import "fmt"

// KeyConfig holds configuration for loading the CSRF key.
type KeyConfig struct {
	Key  string `mapstructure:"key"`      // Inline hex or base64 key
	File string `mapstructure:"key_file"` // Path to a file holding the key
}

// LoadKey returns the configured key. The file takes precedence over the
// inline key. With neither configured a random key is generated and
// generated is true; cookies issued with it do not survive a restart.
func LoadKey(cfg KeyConfig) (key []byte, generated bool, err error) {
	if cfg.File != "" {
		key, err := LoadKeyFromFile(cfg.File)
		if err != nil {
			return nil, false, err
		}
		return key, false, nil
	}

	if cfg.Key != "" {
		key, err := DecodeKey(cfg.Key)
		if err != nil {
			return nil, false, fmt.Errorf("inline key: %w", err)
		}
		return key, false, nil
	}

	key, err = GenerateKey()
	if err != nil {
		return nil, false, err
	}
	return key, true, nil
}
