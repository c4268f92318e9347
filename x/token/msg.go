package token

import (
	"regexp"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

const (
	pathCreateMintMsg    = "token/create_mint"
	pathMintToMsg        = "token/mint_to"
	pathCreateAccountMsg = "token/create_account"
	pathTransferMsg      = "token/transfer"
	pathSendNativeMsg    = "token/send_native"
)

var isTicker = regexp.MustCompile(`^[A-Z0-9]{3,8}$`).MatchString

// CreateMintMsg creates a new mint. Its address is derived from the
// authority and the ticker.
type CreateMintMsg struct {
	Payer     barter.Address `json:"payer"`
	Authority barter.Address `json:"authority"`
	Ticker    string         `json:"ticker"`
	// Decimals must fit in a byte.
	Decimals uint32 `json:"decimals"`
}

var _ barter.Msg = (*CreateMintMsg)(nil)

func (CreateMintMsg) Path() string {
	return pathCreateMintMsg
}

func (m *CreateMintMsg) Validate() error {
	if err := m.Payer.Validate(); err != nil {
		return errors.Wrap(err, "payer")
	}
	if err := m.Authority.Validate(); err != nil {
		return errors.Wrap(err, "authority")
	}
	if !isTicker(m.Ticker) {
		return errors.Wrapf(errors.ErrInput, "ticker %q", m.Ticker)
	}
	if m.Decimals > 255 {
		return errors.Wrapf(errors.ErrInput, "decimals %d", m.Decimals)
	}
	return nil
}

// MintToMsg issues new tokens of a mint into an account.
type MintToMsg struct {
	Mint      barter.Address `json:"mint"`
	Account   barter.Address `json:"account"`
	Authority barter.Address `json:"authority"`
	Amount    uint64         `json:"amount"`
}

var _ barter.Msg = (*MintToMsg)(nil)

func (MintToMsg) Path() string {
	return pathMintToMsg
}

func (m *MintToMsg) Validate() error {
	if err := m.Mint.Validate(); err != nil {
		return errors.Wrap(err, "mint")
	}
	if err := m.Account.Validate(); err != nil {
		return errors.Wrap(err, "account")
	}
	if err := m.Authority.Validate(); err != nil {
		return errors.Wrap(err, "authority")
	}
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero amount")
	}
	return nil
}

// CreateAccountMsg creates the associated account of an owner for a mint.
type CreateAccountMsg struct {
	Payer barter.Address `json:"payer"`
	Owner barter.Address `json:"owner"`
	Mint  barter.Address `json:"mint"`
}

var _ barter.Msg = (*CreateAccountMsg)(nil)

func (CreateAccountMsg) Path() string {
	return pathCreateAccountMsg
}

func (m *CreateAccountMsg) Validate() error {
	if err := m.Payer.Validate(); err != nil {
		return errors.Wrap(err, "payer")
	}
	if err := m.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	return errors.Wrap(m.Mint.Validate(), "mint")
}

// TransferMsg moves tokens between two accounts of the same mint.
type TransferMsg struct {
	Source      barter.Address `json:"source"`
	Destination barter.Address `json:"destination"`
	Owner       barter.Address `json:"owner"`
	Amount      uint64         `json:"amount"`
}

var _ barter.Msg = (*TransferMsg)(nil)

func (TransferMsg) Path() string {
	return pathTransferMsg
}

func (m *TransferMsg) Validate() error {
	if err := m.Source.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := m.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if err := m.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero amount")
	}
	return nil
}

// SendNativeMsg moves native balance between two addresses.
type SendNativeMsg struct {
	Source      barter.Address `json:"source"`
	Destination barter.Address `json:"destination"`
	Amount      uint64         `json:"amount"`
}

var _ barter.Msg = (*SendNativeMsg)(nil)

func (SendNativeMsg) Path() string {
	return pathSendNativeMsg
}

func (m *SendNativeMsg) Validate() error {
	if err := m.Source.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := m.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero amount")
	}
	return nil
}
