package sigs

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/weavetest"
)

// signedTx is a SignedTx that signs a fixed payload.
type signedTx struct {
	weavetest.Tx
	payload    []byte
	Signatures []*StdSignature
}

var _ SignedTx = (*signedTx)(nil)

func newSignedTx(payload []byte) *signedTx {
	return &signedTx{
		Tx:      weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "test/sign"}},
		payload: payload,
	}
}

func (tx *signedTx) GetSignBytes() ([]byte, error) {
	return tx.payload, nil
}

func (tx *signedTx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

// sigCheckHandler stores the seen signers on each call
type sigCheckHandler struct {
	Signers []barter.Condition
}

var _ barter.Handler = (*sigCheckHandler)(nil)

func (s *sigCheckHandler) Check(ctx barter.Context, store barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	s.Signers = Authenticate{}.GetConditions(ctx)
	return &barter.CheckResult{}, nil
}

func (s *sigCheckHandler) Deliver(ctx barter.Context, store barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	s.Signers = Authenticate{}.GetConditions(ctx)
	return &barter.DeliverResult{}, nil
}
