package common

import (
	"crypto/rand"
	"encoding/hex"
)

// ShareTokenBytes is the number of random bytes behind a share token.
// Encoded as hex the token is 64 characters long.
const ShareTokenBytes = 32

// MakeRandHexString generates a random hexadecimal string from size random
// bytes. The resulting string is twice as long as size, since each byte
// encodes as two hex characters.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Used to remove key material from memory after use. A nil slice is
// a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
