package escrow

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/weavetest"
	"github.com/iov-one/barter/weavetest/assert"
)

func TestEscrowLayout(t *testing.T) {
	maker := weavetest.NewAddress()
	addr, bump, err := FindAddress(maker, 1)
	assert.Nil(t, err)

	e := Escrow{
		Seed:    1,
		Maker:   maker,
		MintA:   weavetest.NewAddress(),
		MintB:   weavetest.NewAddress(),
		Receive: 50,
		Bump:    bump,
	}
	raw, err := e.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, 121, len(raw))

	tag := sha256.Sum256([]byte("account:Escrow"))
	assert.Equal(t, tag[:8], raw[:8])
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(raw[8:16]))
	assert.Equal(t, []byte(e.Maker), raw[16:48])
	assert.Equal(t, []byte(e.MintA), raw[48:80])
	assert.Equal(t, []byte(e.MintB), raw[80:112])
	assert.Equal(t, uint64(50), binary.LittleEndian.Uint64(raw[112:120]))
	assert.Equal(t, bump, raw[120])

	var loaded Escrow
	assert.Nil(t, loaded.Unmarshal(raw))
	assert.Equal(t, e, loaded)

	got, err := loaded.Address()
	assert.Nil(t, err)
	assert.Equal(t, addr, got)
}

func TestEscrowUnmarshalErrors(t *testing.T) {
	e := Escrow{
		Seed:    3,
		Maker:   weavetest.NewAddress(),
		MintA:   weavetest.NewAddress(),
		MintB:   weavetest.NewAddress(),
		Receive: 1,
	}
	raw, err := e.Marshal()
	assert.Nil(t, err)

	cases := map[string][]byte{
		"empty":     nil,
		"too short": raw[:RecordSize-1],
		"too long":  append(append([]byte(nil), raw...), 0),
		"wrong tag": append([]byte{0xde, 0xad, 0xbe, 0xef, 0, 0, 0, 0}, raw[8:]...),
	}
	for testName, data := range cases {
		t.Run(testName, func(t *testing.T) {
			var loaded Escrow
			assert.IsErr(t, errors.ErrModel, loaded.Unmarshal(data))
		})
	}
}

func TestEscrowValidate(t *testing.T) {
	mint := weavetest.NewAddress()
	cases := map[string]struct {
		Escrow  Escrow
		WantErr *errors.Error
	}{
		"valid": {
			Escrow: Escrow{Maker: weavetest.NewAddress(), MintA: mint, MintB: weavetest.NewAddress(), Receive: 1},
		},
		"missing maker": {
			Escrow:  Escrow{MintA: mint, MintB: weavetest.NewAddress(), Receive: 1},
			WantErr: errors.ErrInput,
		},
		"short mint": {
			Escrow:  Escrow{Maker: weavetest.NewAddress(), MintA: barter.Address{1, 2}, MintB: weavetest.NewAddress(), Receive: 1},
			WantErr: errors.ErrInput,
		},
		"same mints": {
			Escrow:  Escrow{Maker: weavetest.NewAddress(), MintA: mint, MintB: mint, Receive: 1},
			WantErr: errors.ErrInput,
		},
		"zero receive": {
			Escrow:  Escrow{Maker: weavetest.NewAddress(), MintA: mint, MintB: weavetest.NewAddress()},
			WantErr: errors.ErrAmount,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.IsErr(t, tc.WantErr, tc.Escrow.Validate())
			_, err := tc.Escrow.Marshal()
			assert.IsErr(t, tc.WantErr, err)
		})
	}
}

func TestFindAddress(t *testing.T) {
	maker := weavetest.NewAddress()
	a1, bump, err := FindAddress(maker, 1)
	assert.Nil(t, err)

	again, bump2, err := FindAddress(maker, 1)
	assert.Nil(t, err)
	assert.Equal(t, a1, again)
	assert.Equal(t, bump, bump2)

	a2, _, err := FindAddress(maker, 2)
	assert.Nil(t, err)
	assert.Equal(t, false, a1.Equals(a2))

	other, _, err := FindAddress(weavetest.NewAddress(), 1)
	assert.Nil(t, err)
	assert.Equal(t, false, a1.Equals(other))

	created, err := barter.CreateDerivedAddress(Extension, maker, seedBytes(1), []byte{bump})
	assert.Nil(t, err)
	assert.Equal(t, a1, created)
}
