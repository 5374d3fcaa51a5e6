package cryptox

import (
	"fmt"

	"github.com/dmitrijs2005/vaultbox/internal/common"
)

// pad appends PKCS#7 padding so len(result) is a multiple of n. A full
// block of padding is added when the input is already aligned.
func pad(n int, buf []byte) []byte {
	padding := n - len(buf)%n
	out := make([]byte, len(buf), len(buf)+padding)
	copy(out, buf)
	for i := 0; i < padding; i++ {
		out = append(out, byte(padding))
	}
	return out
}

// unpad strips PKCS#7 padding, failing with ErrCorruptData when the
// padding bytes are inconsistent. Wrong-key decryptions surface here.
func unpad(n int, buf []byte) ([]byte, error) {
	length := len(buf)
	if length == 0 || length%n != 0 {
		return nil, fmt.Errorf("%w: bad padded length %d", common.ErrCorruptData, length)
	}
	padding := int(buf[length-1])
	if padding == 0 || padding > n {
		return nil, fmt.Errorf("%w: bad padding value %d", common.ErrCorruptData, padding)
	}
	for i := 0; i < padding; i++ {
		if buf[length-1-i] != byte(padding) {
			return nil, fmt.Errorf("%w: inconsistent padding", common.ErrCorruptData)
		}
	}
	return buf[:length-padding], nil
}
