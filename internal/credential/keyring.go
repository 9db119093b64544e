package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"

	"github.com/nhle/equipment-alerts/internal/model"
)

const serviceName = "equipment-alerts"

// ErrNotFound is returned when the keyring has no entry for a key.
var ErrNotFound = keyring.ErrKeyNotFound

// Vault reads and writes secrets in a keyring.
type Vault struct {
	ring keyring.Keyring
}

// NewVault wraps an already opened keyring.
func NewVault(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring}
}

// Open returns a Vault backed by the system keyring, falling back to an
// encrypted file under ~/.config/equipment-alerts/credentials.
func Open() (*Vault, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/equipment-alerts/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("equipment-alerts-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewVault(ring), nil
}

// Get retrieves a credential value by key.
func (v *Vault) Get(key string) (string, error) {
	item, err := v.ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential value by key.
func (v *Vault) Set(key, value string) error {
	err := v.ring.Set(keyring.Item{
		Key:         key,
		Data:        []byte(value),
		Label:       fmt.Sprintf("%s %s", serviceName, key),
		Description: "equipment-alerts database credential",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential by key.
func (v *Vault) Delete(key string) error {
	if err := v.ring.Remove(key); err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// ResolveDSN returns the database DSN to connect with. When the config
// names a keyring entry, the stored value wins over the configured DSN.
func ResolveDSN(v *Vault, cfg model.DatabaseConfig) (string, error) {
	if cfg.KeyringKey == "" {
		return cfg.DSN, nil
	}
	if v == nil {
		return "", errors.New("database.keyring_key is set but no keyring is available")
	}

	dsn, err := v.Get(cfg.KeyringKey)
	if err != nil {
		return "", fmt.Errorf("resolving database dsn: %w", err)
	}
	return dsn, nil
}
