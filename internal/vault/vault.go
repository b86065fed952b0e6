// Package vault implements the custodial key vault: authenticated symmetric
// encryption of Algorand private key material at rest.
//
// Keys are sealed with AES-256-GCM under a process-wide master key. The
// sealed form is a single opaque blob (nonce ‖ ciphertext ‖ tag), so storage
// layers never handle nonce and ciphertext separately. Decrypted plaintext
// must be held only across the immediately following signing call; callers
// wipe it with common.WipeByteArray as soon as signing completes.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/IscoRuta98/ArdhiHub-server/internal/common"
)

const (
	// KeySize is the required master key length (AES-256).
	KeySize = 32

	nonceSize = 12
)

// DeriveMasterKey stretches a passphrase into a 32-byte master key with
// argon2id. Same parameters for every deployment; the salt comes from
// configuration and must stay stable for the lifetime of the stored blobs.
func DeriveMasterKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// Vault seals and opens private key material under one master key.
type Vault struct {
	aead cipher.AEAD
}

// New builds a Vault from a 32-byte master key. A missing or malformed key
// yields ErrEncryption: there is no unencrypted fallback mode.
func New(masterKey []byte) (*Vault, error) {
	if len(masterKey) != KeySize {
		return nil, fmt.Errorf("%w: master key must be %d bytes, got %d",
			common.ErrEncryption, KeySize, len(masterKey))
	}

	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEncryption, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEncryption, err)
	}

	return &Vault{aead: aead}, nil
}

// Encrypt seals plaintext key material into an opaque blob. A fresh random
// nonce is generated per call, so encrypting the same key twice produces
// different blobs.
func (v *Vault) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEncryption, err)
	}

	// Seal appends to the nonce, giving nonce ‖ ciphertext ‖ tag.
	return v.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a blob produced by Encrypt.
//
// A blob too short to carry a nonce fails with ErrCiphertextInvalid; a blob
// that does not authenticate (tampered, or sealed under a different master
// key) fails with ErrDecryptFailed. Both wrap ErrEncryption and are fatal
// for the calling operation.
func (v *Vault) Decrypt(blob []byte) ([]byte, error) {
	if len(blob) < nonceSize {
		return nil, fmt.Errorf("%w: blob of %d bytes cannot carry a nonce: %w",
			ErrCiphertextInvalid, len(blob), common.ErrEncryption)
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]
	plaintext, err := v.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptFailed, common.ErrEncryption)
	}
	return plaintext, nil
}
