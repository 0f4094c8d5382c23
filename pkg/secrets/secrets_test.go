package secrets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-labs/harmonia/pkg/secrets"
)

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	assert.Len(t, key, secrets.KeySize)

	other, err := secrets.GenerateKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestEncryptDecryptString(t *testing.T) {
	t.Parallel()

	appKey, err := secrets.GenerateKey()
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		ct, err := secrets.EncryptString(appKey, "esp:sendgrid", "SG.super-secret")
		require.NoError(t, err)
		assert.NotEqual(t, "SG.super-secret", ct)

		plain, err := secrets.DecryptString(appKey, "esp:sendgrid", ct)
		require.NoError(t, err)
		assert.Equal(t, "SG.super-secret", plain)
	})

	t.Run("different scope cannot decrypt", func(t *testing.T) {
		t.Parallel()

		ct, err := secrets.EncryptString(appKey, "esp:sendgrid", "SG.super-secret")
		require.NoError(t, err)

		_, err = secrets.DecryptString(appKey, "esp:brevo", ct)
		assert.ErrorIs(t, err, secrets.ErrDecryptionFailed)
	})

	t.Run("different app key cannot decrypt", func(t *testing.T) {
		t.Parallel()

		ct, err := secrets.EncryptString(appKey, "esp:sendgrid", "SG.super-secret")
		require.NoError(t, err)

		otherKey, err := secrets.GenerateKey()
		require.NoError(t, err)

		_, err = secrets.DecryptString(otherKey, "esp:sendgrid", ct)
		assert.ErrorIs(t, err, secrets.ErrDecryptionFailed)
	})

	t.Run("nondeterministic ciphertext", func(t *testing.T) {
		t.Parallel()

		first, err := secrets.EncryptString(appKey, "esp:sendgrid", "value")
		require.NoError(t, err)
		second, err := secrets.EncryptString(appKey, "esp:sendgrid", "value")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("invalid base64 ciphertext", func(t *testing.T) {
		t.Parallel()

		_, err := secrets.DecryptString(appKey, "esp:sendgrid", "not-base64!!!")
		assert.ErrorIs(t, err, secrets.ErrInvalidCiphertext)
	})
}

func TestEncryptDecryptBytes(t *testing.T) {
	t.Parallel()

	appKey, err := secrets.GenerateKey()
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		ct, err := secrets.EncryptBytes(appKey, "esp:omnisend", []byte{0x00, 0x01, 0xff})
		require.NoError(t, err)

		plain, err := secrets.DecryptBytes(appKey, "esp:omnisend", ct)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x00, 0x01, 0xff}, plain)
	})

	t.Run("truncated ciphertext", func(t *testing.T) {
		t.Parallel()

		_, err := secrets.DecryptBytes(appKey, "esp:omnisend", []byte{0x01, 0x02})
		assert.ErrorIs(t, err, secrets.ErrInvalidCiphertext)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		t.Parallel()

		ct, err := secrets.EncryptBytes(appKey, "esp:omnisend", []byte("payload"))
		require.NoError(t, err)

		ct[len(ct)-1] ^= 0xff
		_, err = secrets.DecryptBytes(appKey, "esp:omnisend", ct)
		assert.ErrorIs(t, err, secrets.ErrDecryptionFailed)
	})
}

func TestInputValidation(t *testing.T) {
	t.Parallel()

	appKey, err := secrets.GenerateKey()
	require.NoError(t, err)

	t.Run("short app key", func(t *testing.T) {
		t.Parallel()

		_, err := secrets.EncryptString([]byte("short"), "esp:sendgrid", "value")
		assert.ErrorIs(t, err, secrets.ErrInvalidAppKey)
	})

	t.Run("empty scope", func(t *testing.T) {
		t.Parallel()

		_, err := secrets.EncryptString(appKey, "", "value")
		assert.ErrorIs(t, err, secrets.ErrEmptyScope)
	})
}
