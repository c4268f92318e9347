// Package bech32 converts addresses between raw bytes and the bech32 text
// form shown to users.
package bech32

import (
	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/barter/errors"
)

// HRP is the human readable part of barter addresses.
const HRP = "barter"

// Encode returns the bech32 text of payload under the given human readable
// part.
func Encode(hrp string, payload []byte) (string, error) {
	groups, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInput, "regroup bits: %s", err)
	}
	text, err := bech32.Encode(hrp, groups)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInput, "bech32 encode: %s", err)
	}
	return text, nil
}

// Decode splits a bech32 text into its human readable part and payload.
// The checksum is verified.
func Decode(text string) (string, []byte, error) {
	hrp, groups, err := bech32.Decode(text)
	if err != nil {
		return "", nil, errors.Wrapf(errors.ErrInput, "bech32 decode: %s", err)
	}
	payload, err := bech32.ConvertBits(groups, 5, 8, false)
	if err != nil {
		return "", nil, errors.Wrapf(errors.ErrInput, "regroup bits: %s", err)
	}
	return hrp, payload, nil
}
