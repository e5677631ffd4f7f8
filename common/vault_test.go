package common

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/artledger/certmint/models"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func init() {
	log.SetOutput(io.Discard)
}

func TestVaultRoundTrip(t *testing.T) {
	vault := NewVault("test-secret")

	plaintexts := map[string]string{
		"Private Key Hex": "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318",
		"Empty String":    "",
		"Unicode":         "鍵 clé ключ 🔑",
		"Long Input":      strings.Repeat("0123456789abcdef", 16),
	}

	for name, plaintext := range plaintexts {
		t.Run(name, func(t *testing.T) {
			blob, err := vault.Encrypt(plaintext)
			assert.Nil(t, err)
			assert.NotEqual(t, plaintext, blob)
			assert.Contains(t, blob, ":")

			decrypted, err := vault.Decrypt(blob)
			assert.Nil(t, err)
			assert.Equal(t, plaintext, decrypted)
		})
	}
}

func TestVaultEncryptNonDeterministic(t *testing.T) {
	vault := NewVault("test-secret")

	first, err := vault.Encrypt("same plaintext")
	assert.Nil(t, err)
	second, err := vault.Encrypt("same plaintext")
	assert.Nil(t, err)

	// fresh nonce per call
	assert.NotEqual(t, first, second)
}

func TestVaultSecretPadding(t *testing.T) {
	t.Run("Short Secret", func(t *testing.T) {
		vault := NewVault("s")
		blob, err := vault.Encrypt("data")
		assert.Nil(t, err)
		decrypted, err := vault.Decrypt(blob)
		assert.Nil(t, err)
		assert.Equal(t, "data", decrypted)
	})

	t.Run("Long Secret Truncated", func(t *testing.T) {
		long := strings.Repeat("a", 64)
		vault := NewVault(long)
		other := NewVault(long[:32])

		blob, err := vault.Encrypt("data")
		assert.Nil(t, err)

		// first 32 bytes are the effective key
		decrypted, err := other.Decrypt(blob)
		assert.Nil(t, err)
		assert.Equal(t, "data", decrypted)
	})
}

func TestVaultDecryptMalformed(t *testing.T) {
	vault := NewVault("test-secret")

	t.Run("No Separator", func(t *testing.T) {
		_, err := vault.Decrypt("deadbeef")
		assertCode(t, err, models.ErrMalformedCipherText)
	})

	t.Run("Too Many Parts", func(t *testing.T) {
		_, err := vault.Decrypt("aa:bb:cc")
		assertCode(t, err, models.ErrMalformedCipherText)
	})

	t.Run("Invalid Nonce Hex", func(t *testing.T) {
		_, err := vault.Decrypt("zz:deadbeef")
		assertCode(t, err, models.ErrMalformedCipherText)
	})

	t.Run("Invalid Data Hex", func(t *testing.T) {
		_, err := vault.Decrypt("deadbeefdeadbeefdeadbeef:zz")
		assertCode(t, err, models.ErrMalformedCipherText)
	})

	t.Run("Wrong Nonce Length", func(t *testing.T) {
		_, err := vault.Decrypt("dead:beef")
		assertCode(t, err, models.ErrMalformedCipherText)
	})
}

func TestVaultDecryptWrongKey(t *testing.T) {
	vault := NewVault("test-secret")
	other := NewVault("other-secret")

	blob, err := vault.Encrypt("private key material")
	assert.Nil(t, err)

	_, err = other.Decrypt(blob)
	assertCode(t, err, models.ErrDecryptionFailed)
}

func TestVaultDecryptTampered(t *testing.T) {
	vault := NewVault("test-secret")

	blob, err := vault.Encrypt("private key material")
	assert.Nil(t, err)

	tampered := blob[:len(blob)-2] + "00"
	if tampered == blob {
		tampered = blob[:len(blob)-2] + "11"
	}
	_, err = vault.Decrypt(tampered)
	assertCode(t, err, models.ErrDecryptionFailed)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	assert.NotNil(t, err)
	var svcErr *models.ServiceError
	assert.True(t, errors.As(err, &svcErr))
	assert.Equal(t, code, svcErr.Code)
}
