package app

import (
	"sync"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp adds DeliverTx and CheckTx handlers to the storage and query
// functionality of StoreApp.
//
// All ABCI calls are serialized. Two transactions touching the same escrow
// are applied one after the other in the order they were received.
type BaseApp struct {
	*StoreApp
	mu      sync.Mutex
	decoder barter.TxDecoder
	handler barter.Handler
}

var _ abci.Application = (*BaseApp)(nil)

// NewBaseApp constructs a basic abci application
func NewBaseApp(store *StoreApp, decoder barter.TxDecoder, handler barter.Handler) *BaseApp {
	return &BaseApp{
		StoreApp: store,
		decoder:  decoder,
		handler:  handler,
	}
}

// DeliverTx - ABCI - dispatches to the handler
func (b *BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return barter.DeliverTxError(err, b.debug)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ctx := barter.WithLogInfo(b.BlockContext(),
		"call", "deliver_tx",
		"path", barter.GetPath(tx))
	res, err := b.handler.Deliver(ctx, b.DeliverStore(), tx)
	return barter.DeliverOrError(res, err, b.debug)
}

// CheckTx - ABCI - dispatches to the handler
func (b *BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return barter.CheckTxError(err, b.debug)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ctx := barter.WithLogInfo(b.BlockContext(),
		"call", "check_tx",
		"path", barter.GetPath(tx))
	res, err := b.handler.Check(ctx, b.CheckStore(), tx)
	return barter.CheckOrError(res, err, b.debug)
}

// Commit - ABCI
func (b *BaseApp) Commit() abci.ResponseCommit {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.StoreApp.Commit()
}

// Query - ABCI
func (b *BaseApp) Query(req abci.RequestQuery) abci.ResponseQuery {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.StoreApp.Query(req)
}

// InitChain - ABCI
func (b *BaseApp) InitChain(req abci.RequestInitChain) abci.ResponseInitChain {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.StoreApp.InitChain(req)
}

// BeginBlock - ABCI
func (b *BaseApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.StoreApp.BeginBlock(req)
}

// loadTx calls the decoder, and capture any panics
func (b *BaseApp) loadTx(txBytes []byte) (tx barter.Tx, err error) {
	defer errors.Recover(&err)
	tx, err = b.decoder(txBytes)
	return
}
