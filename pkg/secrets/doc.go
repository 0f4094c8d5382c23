// Package secrets provides high-level helpers for encrypting and decrypting
// stored credentials such as provider API keys.
//
// The package derives a 32-byte key from the application key and a scope
// label (e.g. "esp:sendgrid") using HKDF-SHA-256, so a leaked ciphertext for
// one scope cannot be decrypted with another scope's derived key. The derived
// key is then used with AES-256 in GCM mode to protect arbitrary byte slices
// or UTF-8 strings.
//
// On successful encryption the nonce is prepended to the ciphertext so that
// all necessary data is self-contained.
//
// # Usage
//
//	import "github.com/harmonia-labs/harmonia/pkg/secrets"
//
//	// Generate the app key once and store securely
//	appKey, _ := secrets.GenerateKey()
//
//	// Encrypt
//	ct, err := secrets.EncryptString(appKey, "esp:sendgrid", "SG.xxxxx")
//	if err != nil {
//	    // handle error
//	}
//
//	// Decrypt
//	plain, err := secrets.DecryptString(appKey, "esp:sendgrid", ct)
//	if err != nil {
//	    // handle error
//	}
//
// # Error Handling
//
// All public functions return rich errors that wrap a sentinel package error
// such as `ErrEncryptionFailed` or `ErrInvalidCiphertext`. Use `errors.Is` to
// match against these sentinels.
package secrets
