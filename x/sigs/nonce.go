package sigs

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

// NextNonce returns the next numeric nonce value that should be used during a
// transaction signing.
// You can get the signers address by calling
//   address := <crypto.Signer>.PublicKey().Address()
func NextNonce(db barter.ReadOnlyKVStore, signer barter.Address) (int64, error) {
	var u UserData
	switch err := NewBucket().One(db, signer, &u); {
	case err == nil:
		return u.Sequence, nil
	case errors.ErrNotFound.Is(err):
		// If not yet present, nonce counting starts with zero.
		return 0, nil
	default:
		return 0, errors.Wrap(err, "bucket get")
	}
}
