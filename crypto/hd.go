package crypto

import (
	"github.com/iov-one/barter/errors"
	"github.com/stellar/go/exp/crypto/derivation"
)

// DefaultPath is the hardened derivation path of the first barter account.
const DefaultPath = "m/44'/234'/0'"

// DeriveKey returns the ed25519 key found at path in the SLIP-0010 tree of
// seed. The same seed and path always give the same key.
func DeriveKey(seed []byte, path string) (*PrivateKey, error) {
	if len(seed) < 16 || len(seed) > 64 {
		return nil, errors.Wrapf(errors.ErrInput, "seed of %d bytes", len(seed))
	}
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "path %q: %s", path, err)
	}
	return PrivKeyEd25519FromSeed(k.Key), nil
}
