package weavetest

import (
	"crypto/rand"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/crypto"
)

// NewCondition returns a new signature condition. Each call returns a
// different, random value.
func NewCondition() barter.Condition {
	return crypto.GenPrivKeyEd25519().PublicKey().Condition()
}

// NewAddress returns a random address that does not belong to any signer.
func NewAddress() barter.Address {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return barter.NewCondition("test", "random", b).Address()
}
