package auth

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
	"github.com/google/uuid"
)

const (
	serviceName = "venue"
	tokenKey    = "bridge_token"
)

var (
	ErrNoToken      = errors.New("no token stored")
	ErrInvalidToken = errors.New("stored token is invalid")
)

// Store handles secure token storage using the system keyring
type Store struct {
	ring keyring.Keyring
}

// NewStore creates a new token store
func NewStore() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		// Use appropriate backend based on platform
		AllowedBackends: []keyring.BackendType{
			keyring.SecretServiceBackend, // Linux
			keyring.KeychainBackend,      // macOS
			keyring.WinCredBackend,       // Windows
			keyring.PassBackend,          // Linux fallback
			keyring.FileBackend,          // Universal fallback
		},
		FileDir:                  "~/.venue-keys",
		FilePasswordFunc:         keyring.FixedStringPrompt(serviceName),
		LibSecretCollectionName:  serviceName,
		KWalletAppID:             serviceName,
		KWalletFolder:            serviceName,
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}

	return NewStoreWithKeyring(ring), nil
}

// NewStoreWithKeyring creates a token store over an already opened keyring
func NewStoreWithKeyring(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// LoadToken retrieves the stored bridge token
func (s *Store) LoadToken() (string, error) {
	item, err := s.ring.Get(tokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNoToken
		}
		return "", err
	}

	token := string(item.Data)
	if _, err := uuid.Parse(token); err != nil {
		return "", ErrInvalidToken
	}
	return token, nil
}

// LoadOrCreateToken returns the stored bridge token, generating and saving
// a fresh one when none exists or the stored one is unusable
func (s *Store) LoadOrCreateToken() (string, error) {
	token, err := s.LoadToken()
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, ErrNoToken) && !errors.Is(err, ErrInvalidToken) {
		return "", err
	}

	token = uuid.NewString()
	if err := s.SaveToken(token); err != nil {
		return "", fmt.Errorf("failed to save bridge token: %w", err)
	}
	return token, nil
}

// SaveToken stores the bridge token securely
func (s *Store) SaveToken(token string) error {
	return s.ring.Set(keyring.Item{
		Key:         tokenKey,
		Data:        []byte(token),
		Label:       "Venue bridge token",
		Description: "Authorizes local commands sent to the running tray app",
	})
}

// DeleteToken removes the stored token
func (s *Store) DeleteToken() error {
	err := s.ring.Remove(tokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil // Already deleted
	}
	return err
}

// HasToken checks if a token is stored
func (s *Store) HasToken() bool {
	_, err := s.ring.Get(tokenKey)
	return err == nil
}
