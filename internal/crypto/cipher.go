// Package crypto encrypts credential fields at rest. Keys are derived from
// operator-supplied master secrets at startup and held only in memory.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	apperrors "ptero-discord-admin/internal/errors"
)

// Blob layout: keyID (1 byte) || nonce (12 bytes) || AES-256-GCM sealed data.
// The key-id prefix lets decryption pick the right key after a rotation:
// encryption always uses the newest key, decryption accepts any known key.
const (
	keyIDSize = 1
	nonceSize = 12
	keySize   = 32
)

// hkdfInfo binds derived keys to their purpose so the same master secret
// cannot be reused for another subsystem.
const hkdfInfo = "ptero-discord-admin/credentials"

// Cipher encrypts and decrypts credential fields. The zero value is not
// usable; construct with New.
type Cipher struct {
	aeads []cipher.AEAD // index is the key id; the last entry is current
}

// New derives one AEAD key per master secret. Secrets must be ordered oldest
// first; the last secret becomes the encryption key. At most 256 keys are
// supported by the one-byte key-id prefix.
func New(secrets ...string) (*Cipher, error) {
	if len(secrets) == 0 {
		return nil, fmt.Errorf("at least one master secret is required")
	}
	if len(secrets) > 256 {
		return nil, fmt.Errorf("too many master secrets: %d", len(secrets))
	}

	aeads := make([]cipher.AEAD, 0, len(secrets))
	for i, secret := range secrets {
		if secret == "" {
			return nil, fmt.Errorf("master secret %d is empty", i)
		}

		key := make([]byte, keySize)
		kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
		if _, err := io.ReadFull(kdf, key); err != nil {
			return nil, fmt.Errorf("failed to derive key %d: %w", i, err)
		}

		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create cipher for key %d: %w", i, err)
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("failed to create AEAD for key %d: %w", i, err)
		}
		aeads = append(aeads, aead)
	}

	return &Cipher{aeads: aeads}, nil
}

// Encrypt seals plaintext under the newest key and returns the blob.
func (c *Cipher) Encrypt(plaintext string) ([]byte, error) {
	keyID := len(c.aeads) - 1
	aead := c.aeads[keyID]

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	blob := make([]byte, 0, keyIDSize+nonceSize+len(plaintext)+aead.Overhead())
	blob = append(blob, byte(keyID))
	blob = append(blob, nonce...)
	blob = aead.Seal(blob, nonce, []byte(plaintext), nil)
	return blob, nil
}

// Decrypt opens a blob produced by Encrypt. It returns ErrDecryption when
// the blob is truncated, tampered with, or sealed under an unknown key. The
// error carries no ciphertext or key material.
func (c *Cipher) Decrypt(blob []byte) (string, error) {
	if len(blob) < keyIDSize+nonceSize {
		return "", apperrors.ErrDecryption
	}

	keyID := int(blob[0])
	if keyID >= len(c.aeads) {
		return "", apperrors.ErrDecryption
	}
	aead := c.aeads[keyID]

	nonce := blob[keyIDSize : keyIDSize+nonceSize]
	sealed := blob[keyIDSize+nonceSize:]

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", apperrors.ErrDecryption
	}
	return string(plaintext), nil
}
