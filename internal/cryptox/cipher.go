// Package cryptox implements the symmetric cipher codec for stored blobs.
//
// The wire format is IV || ciphertext: a fresh random 16-byte IV is
// prepended to AES-256-CBC ciphertext with PKCS#7 padding, so every blob is
// self-describing and two encryptions of the same plaintext differ. The
// codec produces no authentication tag; integrity is not guaranteed here.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/dmitrijs2005/vaultbox/internal/common"
)

// KeySize is the only accepted key length (AES-256).
const KeySize = 32

// IVSize is the length of the initialization vector prepended to each blob.
const IVSize = aes.BlockSize

// CheckKey validates the secret key length. Called by Encrypt and Decrypt,
// and by the config layer before any I/O happens.
func CheckKey(key []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf("%w: encryption key must be %d bytes, got %d", common.ErrConfig, KeySize, len(key))
	}
	return nil
}

// Encrypt encrypts plaintext with AES-256-CBC under key and returns
// IV || ciphertext. A new random IV is generated per call.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	if err := CheckKey(key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfig, err)
	}

	padded := pad(aes.BlockSize, plaintext)

	out := make([]byte, IVSize+len(padded))
	iv := out[:IVSize]
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("iv generation: %w", err)
	}

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[IVSize:], padded)
	return out, nil
}

// Decrypt reads the first 16 bytes of blob as the IV and decrypts the
// remainder. It returns ErrCorruptData when the ciphertext is truncated,
// not block-aligned, or carries invalid padding.
func Decrypt(blob, key []byte) ([]byte, error) {
	if err := CheckKey(key); err != nil {
		return nil, err
	}
	if len(blob) < IVSize {
		return nil, fmt.Errorf("%w: blob shorter than iv", common.ErrCorruptData)
	}

	iv, ciphertext := blob[:IVSize], blob[IVSize:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d is not a multiple of block size", common.ErrCorruptData, len(ciphertext))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfig, err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return unpad(aes.BlockSize, plaintext)
}
