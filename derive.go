package barter

import (
	"filippo.io/edwards25519"
	"github.com/iov-one/barter/errors"
)

const (
	// MaxSeeds is the maximum number of seeds, bump included, that can be
	// used to derive an address.
	MaxSeeds = 16
	// MaxSeedLength is the maximum length of a single seed.
	MaxSeedLength = 32

	derivedType = "derived"
)

// DerivedCondition returns the condition that names a keyless principal owned
// by the extension ext. The seeds are length prefixed so that no two distinct
// seed lists produce the same condition.
func DerivedCondition(ext string, seeds ...[]byte) (Condition, error) {
	if len(seeds) == 0 || len(seeds) > MaxSeeds {
		return nil, errors.Wrapf(errors.ErrInput, "seed count %d", len(seeds))
	}
	var data []byte
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return nil, errors.Wrapf(errors.ErrInput, "seed %d too long: %d", i, len(s))
		}
		data = append(data, byte(len(s)))
		data = append(data, s...)
	}
	return NewCondition(ext, derivedType, data), nil
}

// CreateDerivedAddress computes the address for the given extension and seed
// list. The seed list must already contain the bump. A digest that is a valid
// ed25519 point is rejected, because such an address could be claimed by a
// holder of a matching private key.
func CreateDerivedAddress(ext string, seeds ...[]byte) (Address, error) {
	c, err := DerivedCondition(ext, seeds...)
	if err != nil {
		return nil, err
	}
	addr := c.Address()
	if isOnCurve(addr) {
		return nil, errors.Wrap(errors.ErrState, "derived address on curve")
	}
	return addr, nil
}

// FindDerivedAddress searches for the highest bump in [0, 255] for which
// CreateDerivedAddress(ext, seeds..., []byte{bump}) succeeds and returns the
// address together with that bump. Store the bump to avoid the search later.
func FindDerivedAddress(ext string, seeds ...[]byte) (Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return nil, 0, errors.Wrapf(errors.ErrInput, "seed count %d", len(seeds))
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateDerivedAddress(ext, withBump...)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.ErrState.Is(err) {
			return nil, 0, err
		}
	}
	return nil, 0, errors.Wrap(errors.ErrState, "no viable bump")
}

func isOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
