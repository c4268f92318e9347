package escrow

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

const (
	pathMakeMsg   = "escrow/make"
	pathTakeMsg   = "escrow/take"
	pathRefundMsg = "escrow/refund"
)

// MakeMsg opens a new escrow. The maker deposits Deposit of MintA and asks
// for Receive of MintB.
type MakeMsg struct {
	Maker   barter.Address `json:"maker"`
	MintA   barter.Address `json:"mint_a"`
	MintB   barter.Address `json:"mint_b"`
	Seed    uint64         `json:"seed"`
	Deposit uint64         `json:"deposit"`
	Receive uint64         `json:"receive"`
}

var _ barter.Msg = (*MakeMsg)(nil)

func (MakeMsg) Path() string {
	return pathMakeMsg
}

func (m *MakeMsg) Validate() error {
	if err := m.Maker.Validate(); err != nil {
		return errors.Wrap(err, "maker")
	}
	if err := m.MintA.Validate(); err != nil {
		return errors.Wrap(err, "mint a")
	}
	if err := m.MintB.Validate(); err != nil {
		return errors.Wrap(err, "mint b")
	}
	if m.MintA.Equals(m.MintB) {
		return errors.Wrap(errors.ErrInput, "same mint on both sides")
	}
	if m.Deposit == 0 {
		return errors.Wrap(errors.ErrAmount, "zero deposit")
	}
	if m.Receive == 0 {
		return errors.Wrap(errors.ErrAmount, "zero receive")
	}
	return nil
}

// TakeMsg settles an escrow. The signer pays the maker and receives the
// vault. All referenced addresses must match the stored record.
type TakeMsg struct {
	Escrow barter.Address `json:"escrow"`
	Maker  barter.Address `json:"maker"`
	MintA  barter.Address `json:"mint_a"`
	MintB  barter.Address `json:"mint_b"`
	Vault  barter.Address `json:"vault"`
}

var _ barter.Msg = (*TakeMsg)(nil)

func (TakeMsg) Path() string {
	return pathTakeMsg
}

func (m *TakeMsg) Validate() error {
	if err := m.Escrow.Validate(); err != nil {
		return errors.Wrap(err, "escrow")
	}
	if err := m.Maker.Validate(); err != nil {
		return errors.Wrap(err, "maker")
	}
	if err := m.MintA.Validate(); err != nil {
		return errors.Wrap(err, "mint a")
	}
	if err := m.MintB.Validate(); err != nil {
		return errors.Wrap(err, "mint b")
	}
	return errors.Wrap(m.Vault.Validate(), "vault")
}

// RefundMsg closes an escrow and returns the deposit to the maker. Only the
// maker can sign it.
type RefundMsg struct {
	Escrow barter.Address `json:"escrow"`
	MintA  barter.Address `json:"mint_a"`
	Vault  barter.Address `json:"vault"`
}

var _ barter.Msg = (*RefundMsg)(nil)

func (RefundMsg) Path() string {
	return pathRefundMsg
}

func (m *RefundMsg) Validate() error {
	if err := m.Escrow.Validate(); err != nil {
		return errors.Wrap(err, "escrow")
	}
	if err := m.MintA.Validate(); err != nil {
		return errors.Wrap(err, "mint a")
	}
	return errors.Wrap(m.Vault.Validate(), "vault")
}
