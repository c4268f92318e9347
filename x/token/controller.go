package token

import (
	"math"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
	"github.com/iov-one/barter/x"
)

// Controller is the ledger interface other extensions depend on.
type Controller interface {
	CreateMint(ctx barter.Context, db barter.KVStore, payer, authority barter.Address, ticker string, decimals uint8) (barter.Address, error)
	MintTo(ctx barter.Context, db barter.KVStore, mint, account, authority barter.Address, amount uint64) error

	CreateAssociated(ctx barter.Context, db barter.KVStore, payer, owner, mint barter.Address) (barter.Address, error)
	EnsureAssociated(ctx barter.Context, db barter.KVStore, payer, owner, mint barter.Address) (barter.Address, error)

	Transfer(ctx barter.Context, db barter.KVStore, from, to, authority barter.Address, amount uint64) error
	TransferChecked(ctx barter.Context, db barter.KVStore, from, to, mint, authority barter.Address, amount uint64, decimals uint8) error
	CloseAccount(ctx barter.Context, db barter.KVStore, account, destination, authority barter.Address) error

	Reserve(ctx barter.Context, db barter.KVStore, payer, holder barter.Address, size int) error
	Release(ctx barter.Context, db barter.KVStore, holder, destination barter.Address) error
	SendNative(ctx barter.Context, db barter.KVStore, from, to barter.Address, amount uint64) error

	Balance(db barter.ReadOnlyKVStore, account barter.Address) (uint64, error)
	Account(db barter.ReadOnlyKVStore, account barter.Address) (*Account, error)
	Mint(db barter.ReadOnlyKVStore, mint barter.Address) (*Mint, error)
	NativeBalance(db barter.ReadOnlyKVStore, addr barter.Address) (uint64, error)
}

// BaseController is the default ledger implementation.
type BaseController struct {
	auth     x.Authenticator
	mints    orm.ModelBucket
	accounts orm.ModelBucket
	purses   orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller that authorizes owners using given
// authenticator.
func NewController(auth x.Authenticator) BaseController {
	return BaseController{
		auth:     auth,
		mints:    NewMintBucket(),
		accounts: NewAccountBucket(),
		purses:   NewPurseBucket(),
	}
}

// CreateMint registers a new mint of the authority. The payer funds the mint
// reserve.
func (c BaseController) CreateMint(ctx barter.Context, db barter.KVStore, payer, authority barter.Address, ticker string, decimals uint8) (barter.Address, error) {
	addr, err := MintAddress(authority, ticker)
	if err != nil {
		return nil, errors.Wrap(err, "mint address")
	}
	switch err := c.mints.Has(db, addr); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "mint %s", addr)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}
	if err := c.Reserve(ctx, db, payer, addr, MintSize); err != nil {
		return nil, err
	}
	mint := Mint{Authority: authority, Decimals: decimals}
	if err := c.mints.Put(db, addr, &mint); err != nil {
		return nil, errors.Wrap(err, "save mint")
	}
	return addr, nil
}

// MintTo issues new tokens into an account. Only the mint authority can do
// that.
func (c BaseController) MintTo(ctx barter.Context, db barter.KVStore, mint, account, authority barter.Address, amount uint64) error {
	m, err := c.Mint(db, mint)
	if err != nil {
		return err
	}
	if !m.Authority.Equals(authority) || !c.auth.HasAddress(ctx, authority) {
		return errors.Wrap(errors.ErrUnauthorized, "mint authority")
	}
	acc, err := c.Account(db, account)
	if err != nil {
		return err
	}
	if !acc.Mint.Equals(mint) {
		return errors.Wrap(errors.ErrConstraint, "account mint")
	}
	if m.Supply > math.MaxUint64-amount || acc.Amount > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "supply")
	}
	m.Supply += amount
	acc.Amount += amount
	if err := c.mints.Put(db, mint, m); err != nil {
		return errors.Wrap(err, "save mint")
	}
	return c.accounts.Put(db, account, acc)
}

// CreateAssociated creates the associated account of (owner, mint). The
// owner does not need to authorize it, the payer does.
func (c BaseController) CreateAssociated(ctx barter.Context, db barter.KVStore, payer, owner, mint barter.Address) (barter.Address, error) {
	if err := owner.Validate(); err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	if err := c.mints.Has(db, mint); err != nil {
		return nil, err
	}
	addr, _, err := AssociatedAddress(owner, mint)
	if err != nil {
		return nil, errors.Wrap(err, "account address")
	}
	switch err := c.accounts.Has(db, addr); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "account %s", addr)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}
	if err := c.Reserve(ctx, db, payer, addr, AccountSize); err != nil {
		return nil, err
	}
	acc := Account{Mint: mint, Owner: owner}
	if err := c.accounts.Put(db, addr, &acc); err != nil {
		return nil, errors.Wrap(err, "save account")
	}
	return addr, nil
}

// EnsureAssociated returns the associated account of (owner, mint), creating
// it first if it does not exist.
func (c BaseController) EnsureAssociated(ctx barter.Context, db barter.KVStore, payer, owner, mint barter.Address) (barter.Address, error) {
	addr, _, err := AssociatedAddress(owner, mint)
	if err != nil {
		return nil, errors.Wrap(err, "account address")
	}
	switch err := c.accounts.Has(db, addr); {
	case err == nil:
		return addr, nil
	case errors.ErrNotFound.Is(err):
		return c.CreateAssociated(ctx, db, payer, owner, mint)
	default:
		return nil, err
	}
}

// Transfer moves tokens between two accounts of the same mint. The authority
// must own the source account.
func (c BaseController) Transfer(ctx barter.Context, db barter.KVStore, from, to, authority barter.Address, amount uint64) error {
	return c.transfer(ctx, db, from, to, authority, amount, nil)
}

// TransferChecked is Transfer that additionally asserts the mint and its
// decimals.
func (c BaseController) TransferChecked(ctx barter.Context, db barter.KVStore, from, to, mint, authority barter.Address, amount uint64, decimals uint8) error {
	return c.transfer(ctx, db, from, to, authority, amount, func(src *Account) error {
		if !src.Mint.Equals(mint) {
			return errors.Wrap(errors.ErrConstraint, "source mint")
		}
		m, err := c.Mint(db, mint)
		if err != nil {
			return err
		}
		if m.Decimals != decimals {
			return errors.Wrapf(errors.ErrConstraint, "mint decimals %d, got %d", m.Decimals, decimals)
		}
		return nil
	})
}

func (c BaseController) transfer(ctx barter.Context, db barter.KVStore, from, to, authority barter.Address, amount uint64, check func(*Account) error) error {
	src, err := c.Account(db, from)
	if err != nil {
		return errors.Wrap(err, "source")
	}
	if err := c.authorize(ctx, src, authority); err != nil {
		return err
	}
	if check != nil {
		if err := check(src); err != nil {
			return err
		}
	}
	dst, err := c.Account(db, to)
	if err != nil {
		return errors.Wrap(err, "destination")
	}
	if !src.Mint.Equals(dst.Mint) {
		return errors.Wrap(errors.ErrConstraint, "mint mismatch")
	}
	if src.Amount < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %d, want %d", src.Amount, amount)
	}
	if from.Equals(to) {
		return nil
	}
	if dst.Amount > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "destination balance")
	}
	src.Amount -= amount
	dst.Amount += amount
	if err := c.accounts.Put(db, from, src); err != nil {
		return err
	}
	return c.accounts.Put(db, to, dst)
}

// CloseAccount deletes an empty account. Its reserve goes to destination.
func (c BaseController) CloseAccount(ctx barter.Context, db barter.KVStore, account, destination, authority barter.Address) error {
	acc, err := c.Account(db, account)
	if err != nil {
		return err
	}
	if err := c.authorize(ctx, acc, authority); err != nil {
		return err
	}
	if acc.Amount != 0 {
		return errors.Wrapf(errors.ErrState, "account holds %d", acc.Amount)
	}
	if err := destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if err := c.accounts.Delete(db, account); err != nil {
		return err
	}
	return c.drain(db, account, destination)
}

func (c BaseController) authorize(ctx barter.Context, acc *Account, authority barter.Address) error {
	if !acc.Owner.Equals(authority) {
		return errors.Wrap(errors.ErrUnauthorized, "not the account owner")
	}
	if !c.auth.HasAddress(ctx, authority) {
		return errors.Wrap(errors.ErrUnauthorized, "owner did not authorize")
	}
	return nil
}

// Reserve moves the reserve of an object of given size from the payer to the
// holder.
func (c BaseController) Reserve(ctx barter.Context, db barter.KVStore, payer, holder barter.Address, size int) error {
	conf, err := loadConf(db)
	if err != nil {
		return err
	}
	amount, err := conf.Reserve(size)
	if err != nil {
		return err
	}
	return errors.Wrap(c.SendNative(ctx, db, payer, holder, amount), "reserve")
}

// Release moves the whole native balance of the holder to destination. The
// holder must be authorized.
func (c BaseController) Release(ctx barter.Context, db barter.KVStore, holder, destination barter.Address) error {
	if !c.auth.HasAddress(ctx, holder) {
		return errors.Wrap(errors.ErrUnauthorized, "holder did not authorize")
	}
	if err := destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	return c.drain(db, holder, destination)
}

// SendNative moves native balance between two addresses.
func (c BaseController) SendNative(ctx barter.Context, db barter.KVStore, from, to barter.Address, amount uint64) error {
	if !c.auth.HasAddress(ctx, from) {
		return errors.Wrap(errors.ErrUnauthorized, "payer did not authorize")
	}
	if err := to.Validate(); err != nil {
		return errors.Wrap(err, "recipient")
	}
	return c.moveNative(db, from, to, amount)
}

func (c BaseController) drain(db barter.KVStore, holder, destination barter.Address) error {
	have, err := c.NativeBalance(db, holder)
	if err != nil {
		return err
	}
	return c.moveNative(db, holder, destination, have)
}

func (c BaseController) moveNative(db barter.KVStore, from, to barter.Address, amount uint64) error {
	have, err := c.NativeBalance(db, from)
	if err != nil {
		return err
	}
	if have < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "native balance %d, want %d", have, amount)
	}
	if amount == 0 || from.Equals(to) {
		return nil
	}
	recv, err := c.NativeBalance(db, to)
	if err != nil {
		return err
	}
	if recv > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "native balance")
	}
	if err := c.setNative(db, from, have-amount); err != nil {
		return err
	}
	return c.setNative(db, to, recv+amount)
}

// setNative stores the native balance. An empty purse is removed.
func (c BaseController) setNative(db barter.KVStore, addr barter.Address, amount uint64) error {
	if amount == 0 {
		err := c.purses.Delete(db, addr)
		if errors.ErrNotFound.Is(err) {
			return nil
		}
		return err
	}
	return c.purses.Put(db, addr, &Purse{Amount: amount})
}

// Balance returns the token amount held by an account.
func (c BaseController) Balance(db barter.ReadOnlyKVStore, account barter.Address) (uint64, error) {
	acc, err := c.Account(db, account)
	if err != nil {
		return 0, err
	}
	return acc.Amount, nil
}

// Account loads a token account. ErrNotFound is returned if it does not
// exist.
func (c BaseController) Account(db barter.ReadOnlyKVStore, account barter.Address) (*Account, error) {
	var acc Account
	if err := c.accounts.One(db, account, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// Mint loads a mint. ErrNotFound is returned if it does not exist.
func (c BaseController) Mint(db barter.ReadOnlyKVStore, mint barter.Address) (*Mint, error) {
	var m Mint
	if err := c.mints.One(db, mint, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// NativeBalance returns the native balance of any address. Unknown
// addresses hold nothing.
func (c BaseController) NativeBalance(db barter.ReadOnlyKVStore, addr barter.Address) (uint64, error) {
	var p Purse
	switch err := c.purses.One(db, addr, &p); {
	case err == nil:
		return p.Amount, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}
