package cryptox

import (
	"bytes"
	"crypto/aes"
	"testing"

	"github.com/dmitrijs2005/vaultbox/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("01234567890123456789012345678901")

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("hello world"),
		{},
		[]byte("x"),
		bytes.Repeat([]byte{0xAB}, aes.BlockSize),     // exactly one block
		bytes.Repeat([]byte{0x01}, aes.BlockSize*4+7), // unaligned
		bytes.Repeat([]byte{0x00}, 1<<16),             // larger buffer
	}

	for _, p := range payloads {
		blob, err := Encrypt(p, testKey)
		require.NoError(t, err)

		got, err := Decrypt(blob, testKey)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestEncrypt_FreshIVPerCall(t *testing.T) {
	p := []byte("same plaintext")

	a, err := Encrypt(p, testKey)
	require.NoError(t, err)
	b, err := Encrypt(p, testKey)
	require.NoError(t, err)

	assert.NotEqual(t, a[:IVSize], b[:IVSize], "IVs must differ")
	assert.NotEqual(t, a, b, "ciphertext blobs must differ")
}

func TestEncrypt_BlobLayout(t *testing.T) {
	p := []byte("abc")
	blob, err := Encrypt(p, testKey)
	require.NoError(t, err)

	// IV plus exactly one padded block for a 3-byte payload.
	assert.Len(t, blob, IVSize+aes.BlockSize)
}

func TestCheckKey(t *testing.T) {
	tests := []struct {
		name    string
		key     []byte
		wantErr bool
	}{
		{"valid 32 bytes", testKey, false},
		{"nil", nil, true},
		{"short", []byte("too-short"), true},
		{"aes-128 length rejected", bytes.Repeat([]byte{1}, 16), true},
		{"long", bytes.Repeat([]byte{1}, 33), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckKey(tc.key)
			if tc.wantErr {
				assert.ErrorIs(t, err, common.ErrConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecrypt_CorruptBlob(t *testing.T) {
	blob, err := Encrypt([]byte("payload"), testKey)
	require.NoError(t, err)

	t.Run("truncated below iv", func(t *testing.T) {
		_, err := Decrypt(blob[:IVSize-1], testKey)
		assert.ErrorIs(t, err, common.ErrCorruptData)
	})

	t.Run("iv only", func(t *testing.T) {
		_, err := Decrypt(blob[:IVSize], testKey)
		assert.ErrorIs(t, err, common.ErrCorruptData)
	})

	t.Run("unaligned ciphertext", func(t *testing.T) {
		_, err := Decrypt(blob[:len(blob)-1], testKey)
		assert.ErrorIs(t, err, common.ErrCorruptData)
	})

	t.Run("wrong key never yields original plaintext", func(t *testing.T) {
		other := bytes.Repeat([]byte{0x42}, KeySize)
		got, err := Decrypt(blob, other)
		if err == nil {
			// Garbage may rarely pass the padding check, but it can
			// never equal the original payload.
			assert.NotEqual(t, []byte("payload"), got)
		} else {
			assert.ErrorIs(t, err, common.ErrCorruptData)
		}
	})
}

func TestDeriveKey(t *testing.T) {
	k1, err := DeriveKey([]byte("passphrase"), []byte("salt"))
	require.NoError(t, err)
	assert.Len(t, k1, KeySize)

	k2, err := DeriveKey([]byte("passphrase"), []byte("salt"))
	require.NoError(t, err)
	assert.Equal(t, k1, k2, "derivation must be deterministic")

	k3, err := DeriveKey([]byte("passphrase"), []byte("other-salt"))
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)

	_, err = DeriveKey(nil, []byte("salt"))
	assert.ErrorIs(t, err, common.ErrConfig)
	_, err = DeriveKey([]byte("p"), nil)
	assert.ErrorIs(t, err, common.ErrConfig)
}
