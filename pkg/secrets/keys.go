package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the required size for the app key
	KeySize = 32 // 256 bits for AES-256

	// saltInfo is used for HKDF key derivation to provide domain separation
	saltInfo = "harmonia-secrets-v1"
)

// validateInputs checks the app key length and that a scope label is present.
func validateInputs(appKey []byte, scope string) error {
	if len(appKey) != KeySize {
		return ErrInvalidAppKey
	}
	if scope == "" {
		return ErrEmptyScope
	}
	return nil
}

// deriveKey creates a scope-bound key from the app key using HKDF. The scope
// label acts as the HKDF salt, so ciphertexts from different scopes cannot be
// decrypted with each other's derived keys.
func deriveKey(appKey []byte, scope string) ([]byte, error) {
	hkdfReader := hkdf.New(sha256.New, appKey, []byte(scope), []byte(saltInfo))

	derivedKey := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdfReader, derivedKey); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}

	return derivedKey, nil
}

// GenerateKey creates a new random 32-byte key suitable for encryption
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
