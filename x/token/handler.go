package token

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

const (
	createMintCost    int64 = 100
	mintToCost        int64 = 20
	createAccountCost int64 = 50
	transferCost      int64 = 10
	sendNativeCost    int64 = 10
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r barter.Registry, ctrl Controller) {
	r.Handle(pathCreateMintMsg, CreateMintHandler{ctrl})
	r.Handle(pathMintToMsg, MintToHandler{ctrl})
	r.Handle(pathCreateAccountMsg, CreateAccountHandler{ctrl})
	r.Handle(pathTransferMsg, TransferHandler{ctrl})
	r.Handle(pathSendNativeMsg, SendNativeHandler{ctrl})
}

// CreateMintHandler creates mints.
type CreateMintHandler struct {
	ctrl Controller
}

var _ barter.Handler = CreateMintHandler{}

func (h CreateMintHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	var msg CreateMintMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &barter.CheckResult{GasAllocated: createMintCost}, nil
}

// Deliver returns the mint address as the result data.
func (h CreateMintHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	var msg CreateMintMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	addr, err := h.ctrl.CreateMint(ctx, db, msg.Payer, msg.Authority, msg.Ticker, uint8(msg.Decimals))
	if err != nil {
		return nil, err
	}
	return &barter.DeliverResult{Data: addr}, nil
}

// MintToHandler issues tokens.
type MintToHandler struct {
	ctrl Controller
}

var _ barter.Handler = MintToHandler{}

func (h MintToHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	var msg MintToMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &barter.CheckResult{GasAllocated: mintToCost}, nil
}

func (h MintToHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	var msg MintToMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.ctrl.MintTo(ctx, db, msg.Mint, msg.Account, msg.Authority, msg.Amount); err != nil {
		return nil, err
	}
	return &barter.DeliverResult{}, nil
}

// CreateAccountHandler creates associated accounts.
type CreateAccountHandler struct {
	ctrl Controller
}

var _ barter.Handler = CreateAccountHandler{}

func (h CreateAccountHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	var msg CreateAccountMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &barter.CheckResult{GasAllocated: createAccountCost}, nil
}

// Deliver returns the account address as the result data.
func (h CreateAccountHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	var msg CreateAccountMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	addr, err := h.ctrl.CreateAssociated(ctx, db, msg.Payer, msg.Owner, msg.Mint)
	if err != nil {
		return nil, err
	}
	return &barter.DeliverResult{Data: addr}, nil
}

// TransferHandler moves tokens.
type TransferHandler struct {
	ctrl Controller
}

var _ barter.Handler = TransferHandler{}

func (h TransferHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	var msg TransferMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &barter.CheckResult{GasAllocated: transferCost}, nil
}

func (h TransferHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	var msg TransferMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.ctrl.Transfer(ctx, db, msg.Source, msg.Destination, msg.Owner, msg.Amount); err != nil {
		return nil, err
	}
	return &barter.DeliverResult{}, nil
}

// SendNativeHandler moves native balance.
type SendNativeHandler struct {
	ctrl Controller
}

var _ barter.Handler = SendNativeHandler{}

func (h SendNativeHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	var msg SendNativeMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &barter.CheckResult{GasAllocated: sendNativeCost}, nil
}

func (h SendNativeHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	var msg SendNativeMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if err := h.ctrl.SendNative(ctx, db, msg.Source, msg.Destination, msg.Amount); err != nil {
		return nil, err
	}
	return &barter.DeliverResult{}, nil
}
