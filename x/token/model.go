package token

import (
	"encoding/binary"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
)

const (
	// MintSize is the size of a serialized Mint.
	MintSize = barter.AddressLength + 8 + 1
	// AccountSize is the size of a serialized Account.
	AccountSize = 2*barter.AddressLength + 8

	purseSize = 8
)

// Mint describes a token kind.
type Mint struct {
	// Authority is the only address allowed to issue new tokens.
	Authority barter.Address
	// Supply is the total amount issued.
	Supply   uint64
	Decimals uint8
}

var _ orm.Model = (*Mint)(nil)

func (m *Mint) Marshal() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	raw := make([]byte, MintSize)
	copy(raw, m.Authority)
	binary.LittleEndian.PutUint64(raw[32:40], m.Supply)
	raw[40] = m.Decimals
	return raw, nil
}

func (m *Mint) Unmarshal(raw []byte) error {
	if len(raw) != MintSize {
		return errors.Wrapf(errors.ErrModel, "mint size %d", len(raw))
	}
	m.Authority = barter.Address(append([]byte(nil), raw[:32]...))
	m.Supply = binary.LittleEndian.Uint64(raw[32:40])
	m.Decimals = raw[40]
	return nil
}

func (m *Mint) Validate() error {
	return errors.Wrap(m.Authority.Validate(), "authority")
}

// Account holds tokens of a single mint.
type Account struct {
	Mint   barter.Address
	Owner  barter.Address
	Amount uint64
}

var _ orm.Model = (*Account)(nil)

func (a *Account) Marshal() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	raw := make([]byte, AccountSize)
	copy(raw[0:32], a.Mint)
	copy(raw[32:64], a.Owner)
	binary.LittleEndian.PutUint64(raw[64:72], a.Amount)
	return raw, nil
}

func (a *Account) Unmarshal(raw []byte) error {
	if len(raw) != AccountSize {
		return errors.Wrapf(errors.ErrModel, "account size %d", len(raw))
	}
	a.Mint = barter.Address(append([]byte(nil), raw[0:32]...))
	a.Owner = barter.Address(append([]byte(nil), raw[32:64]...))
	a.Amount = binary.LittleEndian.Uint64(raw[64:72])
	return nil
}

func (a *Account) Validate() error {
	if err := a.Mint.Validate(); err != nil {
		return errors.Wrap(err, "mint")
	}
	return errors.Wrap(a.Owner.Validate(), "owner")
}

// Purse is the native balance of an address.
type Purse struct {
	Amount uint64
}

var _ orm.Model = (*Purse)(nil)

func (p *Purse) Marshal() ([]byte, error) {
	raw := make([]byte, purseSize)
	binary.LittleEndian.PutUint64(raw, p.Amount)
	return raw, nil
}

func (p *Purse) Unmarshal(raw []byte) error {
	if len(raw) != purseSize {
		return errors.Wrapf(errors.ErrModel, "purse size %d", len(raw))
	}
	p.Amount = binary.LittleEndian.Uint64(raw)
	return nil
}

func (p *Purse) Validate() error {
	return nil
}

// NewMintBucket returns the bucket of all mints, keyed by the mint address.
func NewMintBucket() orm.ModelBucket {
	return orm.NewModelBucket("mint", &Mint{},
		orm.WithIndex("authority", mintAuthorityIndex, false),
	)
}

func mintAuthorityIndex(m orm.Model) ([]byte, error) {
	mint, ok := m.(*Mint)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return mint.Authority, nil
}

// NewAccountBucket returns the bucket of all token accounts, keyed by the
// account address.
func NewAccountBucket() orm.ModelBucket {
	return orm.NewModelBucket("account", &Account{},
		orm.WithIndex("owner", accountOwnerIndex, false),
		orm.WithIndex("mint", accountMintIndex, false),
	)
}

func accountOwnerIndex(m orm.Model) ([]byte, error) {
	a, ok := m.(*Account)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return a.Owner, nil
}

func accountMintIndex(m orm.Model) ([]byte, error) {
	a, ok := m.(*Account)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return a.Mint, nil
}

// NewPurseBucket returns the bucket of native balances.
func NewPurseBucket() orm.ModelBucket {
	return orm.NewModelBucket("purse", &Purse{})
}

// RegisterQuery exposes mints, accounts and native balances.
func RegisterQuery(qr barter.QueryRouter) {
	NewMintBucket().Register("mints", qr)
	NewAccountBucket().Register("accounts", qr)
	NewPurseBucket().Register("purses", qr)
}

// AssociatedAddress returns the address of the associated account of
// (owner, mint) together with its bump.
func AssociatedAddress(owner, mint barter.Address) (barter.Address, uint8, error) {
	return barter.FindDerivedAddress(extension, owner, mint)
}

// MintAddress returns the address of the mint with given authority and
// ticker.
func MintAddress(authority barter.Address, ticker string) (barter.Address, error) {
	addr, _, err := barter.FindDerivedAddress(extension, mintSeed, authority, []byte(ticker))
	return addr, err
}

const extension = "token"

var mintSeed = []byte("mint")
