package token

import (
	"math"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/gconf"
)

const optKey = "token"

// GenesisMint is a mint declared in the genesis file.
type GenesisMint struct {
	Authority barter.Address `json:"authority"`
	Ticker    string         `json:"ticker"`
	Decimals  uint8          `json:"decimals"`
}

// GenesisAccount is an associated account declared in the genesis file. The
// mint is referenced by its address.
type GenesisAccount struct {
	Owner  barter.Address `json:"owner"`
	Mint   barter.Address `json:"mint"`
	Amount uint64         `json:"amount"`
}

// GenesisPurse is a native balance declared in the genesis file.
type GenesisPurse struct {
	Address barter.Address `json:"address"`
	Amount  uint64         `json:"amount"`
}

// Genesis is the content of the "token" section.
type Genesis struct {
	Mints    []GenesisMint    `json:"mints"`
	Accounts []GenesisAccount `json:"accounts"`
	Purses   []GenesisPurse   `json:"purses"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ barter.Initializer = Initializer{}

// FromGenesis stores the ledger configuration and all declared objects.
// Genesis objects do not pay reserves.
func (Initializer) FromGenesis(opts barter.Options, db barter.KVStore) error {
	if err := gconf.InitConfig(db, opts, confPkg, &Configuration{}); err != nil {
		return errors.Wrap(err, "init config")
	}

	var gen Genesis
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return err
	}

	mints := NewMintBucket()
	for _, m := range gen.Mints {
		if !isTicker(m.Ticker) {
			return errors.Wrapf(errors.ErrInput, "ticker %q", m.Ticker)
		}
		addr, err := MintAddress(m.Authority, m.Ticker)
		if err != nil {
			return errors.Wrapf(err, "mint %s", m.Ticker)
		}
		if err := mints.Put(db, addr, &Mint{Authority: m.Authority, Decimals: m.Decimals}); err != nil {
			return errors.Wrapf(err, "mint %s", m.Ticker)
		}
	}

	accounts := NewAccountBucket()
	for _, a := range gen.Accounts {
		var mint Mint
		if err := mints.One(db, a.Mint, &mint); err != nil {
			return errors.Wrapf(err, "account mint %s", a.Mint)
		}
		if mint.Supply > math.MaxUint64-a.Amount {
			return errors.Wrap(errors.ErrOverflow, "supply")
		}
		mint.Supply += a.Amount
		if err := mints.Put(db, a.Mint, &mint); err != nil {
			return err
		}
		addr, _, err := AssociatedAddress(a.Owner, a.Mint)
		if err != nil {
			return errors.Wrapf(err, "account of %s", a.Owner)
		}
		if err := accounts.Has(db, addr); err == nil {
			return errors.Wrapf(errors.ErrDuplicate, "account of %s", a.Owner)
		}
		acc := Account{Mint: a.Mint, Owner: a.Owner, Amount: a.Amount}
		if err := accounts.Put(db, addr, &acc); err != nil {
			return errors.Wrapf(err, "account of %s", a.Owner)
		}
	}

	purses := NewPurseBucket()
	for _, p := range gen.Purses {
		if err := p.Address.Validate(); err != nil {
			return errors.Wrap(err, "purse")
		}
		if err := purses.Put(db, p.Address, &Purse{Amount: p.Amount}); err != nil {
			return err
		}
	}
	return nil
}
