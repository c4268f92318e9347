package token

import (
	"math"

	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/gconf"
)

const confPkg = "token"

// Configuration holds the reserve prices of stored objects.
type Configuration struct {
	// BaseReserve is paid for every object regardless of its size.
	BaseReserve uint64 `json:"base_reserve"`
	// ReservePerByte is paid for every byte an object occupies.
	ReservePerByte uint64 `json:"reserve_per_byte"`
}

// maxObjectSize bounds the object size a reserve can be computed for.
const maxObjectSize = 1 << 16

func (c *Configuration) Validate() error {
	if c.ReservePerByte > math.MaxUint64/maxObjectSize {
		return errors.Wrap(errors.ErrOverflow, "reserve per byte")
	}
	if c.BaseReserve > math.MaxUint64-maxObjectSize*c.ReservePerByte {
		return errors.Wrap(errors.ErrOverflow, "base reserve")
	}
	return nil
}

// Reserve returns the native amount an object of given size must hold.
func (c Configuration) Reserve(size int) (uint64, error) {
	if size < 0 || size > maxObjectSize {
		return 0, errors.Wrapf(errors.ErrInput, "object size %d", size)
	}
	return c.BaseReserve + uint64(size)*c.ReservePerByte, nil
}

func loadConf(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, confPkg, &conf); err != nil {
		return conf, errors.Wrap(err, "load configuration")
	}
	return conf, nil
}
