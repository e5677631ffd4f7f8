package common

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/artledger/certmint/models"
)

// Vault encrypts and decrypts custodial private keys with a symmetric key
// derived from a configured secret. Pure in-process transform; no I/O.
type Vault struct {
	key []byte
}

// NewVault derives a 256-bit key by truncating or zero-padding the secret
// to exactly 32 bytes.
func NewVault(secret string) *Vault {
	key := make([]byte, 32)
	copy(key, []byte(secret))
	return &Vault{key: key}
}

// Encrypt seals the plaintext with AES-256-GCM under a fresh random nonce.
// Output is hex(nonce) + ":" + hex(ciphertext). The nonce is never reused,
// so two encryptions of the same plaintext differ.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("error creating cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("error creating gcm: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("error generating nonce: %w", err)
	}
	ciphertext := aead.Seal(nil, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. A blob without exactly two colon-separated hex
// parts fails with MALFORMED_CIPHERTEXT; a blob the cipher rejects (wrong
// key, truncation, tampering) fails with DECRYPTION_FAILED.
func (v *Vault) Decrypt(blob string) (string, error) {
	parts := strings.Split(blob, ":")
	if len(parts) != 2 {
		return "", models.NewServiceError(models.ErrMalformedCipherText, "cipher text must be nonce:data")
	}
	nonce, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", models.WrapServiceError(models.ErrMalformedCipherText, "invalid nonce encoding", err)
	}
	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", models.WrapServiceError(models.ErrMalformedCipherText, "invalid data encoding", err)
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("error creating cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("error creating gcm: %w", err)
	}
	if len(nonce) != aead.NonceSize() {
		return "", models.NewServiceError(models.ErrMalformedCipherText, "invalid nonce length")
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", models.WrapServiceError(models.ErrDecryptionFailed, "cipher rejected data", err)
	}
	return string(plaintext), nil
}
