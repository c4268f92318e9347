package authority

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/weavetest"
	"github.com/iov-one/barter/weavetest/assert"
)

func TestSign(t *testing.T) {
	owner := weavetest.NewAddress()
	seed := make([]byte, 8)
	binary.LittleEndian.PutUint64(seed, 42)

	addr, bump, err := barter.FindDerivedAddress("escrow", owner, seed)
	assert.Nil(t, err)

	cases := map[string]struct {
		Seeds   [][]byte
		Allowed bool
		WantErr *errors.Error
	}{
		"matching seeds": {
			Seeds:   [][]byte{owner, seed, {bump}},
			Allowed: true,
		},
		"wrong seed": {
			Seeds:   [][]byte{owner, []byte("other"), {bump}},
			Allowed: false,
		},
		"missing bump": {
			Seeds:   [][]byte{owner, seed},
			Allowed: false,
		},
		"no seeds": {
			Seeds:   nil,
			WantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ctx, err := Sign(context.Background(), "escrow", tc.Seeds...)
			if tc.WantErr != nil {
				assert.IsErr(t, tc.WantErr, err)
				return
			}
			if errors.ErrState.Is(err) {
				// The wrong seed list landed on the curve.
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.Allowed, Authenticate{}.HasAddress(ctx, addr))
		})
	}
}

func TestSignAccumulates(t *testing.T) {
	a, abump, err := barter.FindDerivedAddress("escrow", []byte("a"))
	assert.Nil(t, err)
	b, bbump, err := barter.FindDerivedAddress("token", []byte("b"))
	assert.Nil(t, err)

	ctx := context.Background()
	assert.Equal(t, 0, len(Authenticate{}.GetConditions(ctx)))

	ctx, err = Sign(ctx, "escrow", []byte("a"), []byte{abump})
	assert.Nil(t, err)
	ctx, err = Sign(ctx, "token", []byte("b"), []byte{bbump})
	assert.Nil(t, err)

	auth := Authenticate{}
	assert.Equal(t, 2, len(auth.GetConditions(ctx)))
	assert.Equal(t, true, auth.HasAddress(ctx, a))
	assert.Equal(t, true, auth.HasAddress(ctx, b))
	assert.Equal(t, false, auth.HasAddress(ctx, weavetest.NewAddress()))
}
