package weavetest

import (
	"sync/atomic"

	"github.com/iov-one/barter"
)

// Handler implements a mock of barter.Handler
//
// Use this handler in your tests. Set XxxResult and XxxErr to control what
// Xxx method call returns. Each method call is counted.
type Handler struct {
	checkCall   int32
	CheckResult barter.CheckResult
	CheckErr    error

	deliverCall   int32
	DeliverResult barter.DeliverResult
	DeliverErr    error
}

var _ barter.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	atomic.AddInt32(&h.checkCall, 1)
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	// Copy the value so that the original result is never modified.
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	atomic.AddInt32(&h.deliverCall, 1)
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) CheckCallCount() int {
	return int(atomic.LoadInt32(&h.checkCall))
}

func (h *Handler) DeliverCallCount() int {
	return int(atomic.LoadInt32(&h.deliverCall))
}

func (h *Handler) CallCount() int {
	return h.CheckCallCount() + h.DeliverCallCount()
}

// WriteHandler writes the key value pair to the store and then returns Err.
type WriteHandler struct {
	Key   []byte
	Value []byte
	Err   error
}

var _ barter.Handler = (*WriteHandler)(nil)

func (h *WriteHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &barter.CheckResult{}, nil
}

func (h *WriteHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &barter.DeliverResult{}, nil
}

// PanicHandler panics on every call.
type PanicHandler struct {
	Msg string
}

var _ barter.Handler = PanicHandler{}

func (h PanicHandler) Check(barter.Context, barter.KVStore, barter.Tx) (*barter.CheckResult, error) {
	panic(h.Msg)
}

func (h PanicHandler) Deliver(barter.Context, barter.KVStore, barter.Tx) (*barter.DeliverResult, error) {
	panic(h.Msg)
}
