// Package credential stores Azure DevOps personal access tokens in the
// system keyring. Tokens are written once when a connection is configured
// and decrypted back to plaintext only at call time; they never touch the
// config file or the database.
package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "tracklight"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/tracklight/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("tracklight-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// patKey derives the keyring key for a connection's personal access token.
func patKey(connectionID string) string {
	return "azuredevops-pat-" + connectionID
}

// GetPAT retrieves the personal access token for a connection.
func GetPAT(connectionID string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(patKey(connectionID))
	if err != nil {
		return "", fmt.Errorf("getting token for connection %q: %w", connectionID, err)
	}

	return string(item.Data), nil
}

// SetPAT stores the personal access token for a connection.
func SetPAT(connectionID string, token string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  patKey(connectionID),
		Data: []byte(token),
	})
	if err != nil {
		return fmt.Errorf("setting token for connection %q: %w", connectionID, err)
	}

	return nil
}

// DeletePAT removes the personal access token for a connection.
func DeletePAT(connectionID string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(patKey(connectionID))
	if err != nil {
		return fmt.Errorf("deleting token for connection %q: %w", connectionID, err)
	}

	return nil
}
