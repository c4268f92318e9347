package token

import (
	"testing"

	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/weavetest"
	"github.com/iov-one/barter/weavetest/assert"
)

func TestModelLayout(t *testing.T) {
	mint := Mint{Authority: weavetest.NewAddress(), Supply: 1 << 40, Decimals: 9}
	raw, err := mint.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, MintSize, len(raw))
	assert.Equal(t, 41, len(raw))
	var m2 Mint
	assert.Nil(t, m2.Unmarshal(raw))
	assert.Equal(t, mint, m2)

	acc := Account{Mint: weavetest.NewAddress(), Owner: weavetest.NewAddress(), Amount: 12345}
	raw, err = acc.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, 72, len(raw))
	assert.Equal(t, []byte(acc.Owner), raw[32:64])
	var a2 Account
	assert.Nil(t, a2.Unmarshal(raw))
	assert.Equal(t, acc, a2)

	assert.IsErr(t, errors.ErrModel, a2.Unmarshal(raw[:71]))
	assert.IsErr(t, errors.ErrModel, m2.Unmarshal(raw))
	assert.IsErr(t, errors.ErrModel, new(Purse).Unmarshal(raw))

	_, err = (&Account{Mint: weavetest.NewAddress()}).Marshal()
	assert.IsErr(t, errors.ErrInput, err)
}

func TestConfigurationReserve(t *testing.T) {
	c := Configuration{BaseReserve: 10, ReservePerByte: 3}
	assert.Nil(t, c.Validate())
	r, err := c.Reserve(AccountSize)
	assert.Nil(t, err)
	assert.Equal(t, uint64(10+3*72), r)

	_, err = c.Reserve(-1)
	assert.IsErr(t, errors.ErrInput, err)

	bad := Configuration{ReservePerByte: 1 << 60}
	assert.IsErr(t, errors.ErrOverflow, bad.Validate())
}
