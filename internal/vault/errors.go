package vault

import "errors"

var (
	// ErrCiphertextInvalid marks a blob that is structurally malformed
	// (too short to contain the nonce prefix).
	ErrCiphertextInvalid = errors.New("invalid ciphertext")

	// ErrDecryptFailed marks a blob that failed authentication: it was
	// tampered with or sealed under a different master key.
	ErrDecryptFailed = errors.New("decryption failed")
)
