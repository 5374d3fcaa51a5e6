package cryptox

import (
	"fmt"

	"github.com/dmitrijs2005/vaultbox/internal/common"
	"golang.org/x/crypto/scrypt"
)

// DeriveKey stretches a passphrase into a 32-byte AES key with scrypt.
// Deterministic for a given passphrase and salt, so the same deployment
// configuration always yields the same key.
func DeriveKey(passphrase, salt []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: empty passphrase", common.ErrConfig)
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("%w: empty salt", common.ErrConfig)
	}
	key, err := scrypt.Key(passphrase, salt, 16384, 8, 1, KeySize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfig, err)
	}
	return key, nil
}
