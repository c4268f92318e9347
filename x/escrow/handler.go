package escrow

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
	"github.com/iov-one/barter/x"
	"github.com/iov-one/barter/x/authority"
	"github.com/iov-one/barter/x/token"
)

const (
	makeEscrowCost   int64 = 300
	takeEscrowCost   int64 = 200
	refundEscrowCost int64 = 50
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r barter.Registry, auth x.Authenticator, ledger token.Controller) {
	bucket := NewBucket()
	r.Handle(pathMakeMsg, MakeHandler{auth, bucket, ledger})
	r.Handle(pathTakeMsg, TakeHandler{auth, bucket, ledger})
	r.Handle(pathRefundMsg, RefundHandler{auth, bucket, ledger})
}

// MakeHandler opens escrows.
type MakeHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	ledger token.Controller
}

var _ barter.Handler = MakeHandler{}

// Check runs the whole operation on a throw away copy of the store.
func (h MakeHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := dryRun(db, func(db barter.KVStore) error {
		_, err := h.make(ctx, db, msg)
		return err
	}); err != nil {
		return nil, err
	}
	return &barter.CheckResult{GasAllocated: makeEscrowCost}, nil
}

// Deliver creates the record and the vault and funds the vault. The escrow
// address is returned as the result data.
func (h MakeHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	var addr barter.Address
	err = atomically(db, func(db barter.KVStore) error {
		addr, err = h.make(ctx, db, msg)
		return err
	})
	if err != nil {
		return nil, err
	}
	barter.GetLogger(ctx).Debug("escrow made", "escrow", addr, "maker", msg.Maker, "seed", msg.Seed)
	return &barter.DeliverResult{Data: addr}, nil
}

func (h MakeHandler) validate(ctx barter.Context, tx barter.Tx) (*MakeMsg, error) {
	var msg MakeMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Maker) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "maker must sign")
	}
	return &msg, nil
}

func (h MakeHandler) make(ctx barter.Context, db barter.KVStore, msg *MakeMsg) (barter.Address, error) {
	addr, bump, err := FindAddress(msg.Maker, msg.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "escrow address")
	}
	switch err := h.bucket.Has(db, addr); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "seed %d already used", msg.Seed)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}
	if _, err := h.ledger.Mint(db, msg.MintB); err != nil {
		return nil, errors.Wrap(err, "mint b")
	}

	if err := h.ledger.Reserve(ctx, db, msg.Maker, addr, RecordSize); err != nil {
		return nil, errors.Wrap(err, "record reserve")
	}
	escrow := &Escrow{
		Seed:    msg.Seed,
		Maker:   msg.Maker,
		MintA:   msg.MintA,
		MintB:   msg.MintB,
		Receive: msg.Receive,
		Bump:    bump,
	}
	if err := h.bucket.Put(db, addr, escrow); err != nil {
		return nil, errors.Wrap(err, "cannot store escrow")
	}

	vault, err := h.ledger.CreateAssociated(ctx, db, msg.Maker, addr, msg.MintA)
	if err != nil {
		return nil, errors.Wrap(err, "vault")
	}
	source, _, err := token.AssociatedAddress(msg.Maker, msg.MintA)
	if err != nil {
		return nil, errors.Wrap(err, "maker account")
	}
	if err := h.ledger.Transfer(ctx, db, source, vault, msg.Maker, msg.Deposit); err != nil {
		return nil, errors.Wrap(err, "deposit")
	}
	return addr, nil
}

// TakeHandler settles escrows.
type TakeHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	ledger token.Controller
}

var _ barter.Handler = TakeHandler{}

func (h TakeHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	msg, taker, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := dryRun(db, func(db barter.KVStore) error {
		return h.take(ctx, db, msg, taker)
	}); err != nil {
		return nil, err
	}
	return &barter.CheckResult{GasAllocated: takeEscrowCost}, nil
}

// Deliver pays the maker, pays out the vault to the taker and removes both
// the vault and the record.
func (h TakeHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	msg, taker, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := atomically(db, func(db barter.KVStore) error {
		return h.take(ctx, db, msg, taker)
	}); err != nil {
		return nil, err
	}
	barter.GetLogger(ctx).Debug("escrow taken", "escrow", msg.Escrow, "taker", taker)
	return &barter.DeliverResult{Data: msg.Escrow}, nil
}

func (h TakeHandler) validate(ctx barter.Context, tx barter.Tx) (*TakeMsg, barter.Address, error) {
	var msg TakeMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "taker must sign")
	}
	return &msg, signer.Address(), nil
}

func (h TakeHandler) take(ctx barter.Context, db barter.KVStore, msg *TakeMsg, taker barter.Address) error {
	escrow, vault, err := loadEscrow(db, h.bucket, h.ledger, msg.Escrow, msg.MintA, msg.Vault)
	if err != nil {
		return err
	}
	if !escrow.Maker.Equals(msg.Maker) {
		return errors.Wrap(errors.ErrConstraint, "maker")
	}
	if !escrow.MintB.Equals(msg.MintB) {
		return errors.Wrap(errors.ErrConstraint, "mint b")
	}
	mintA, err := h.ledger.Mint(db, escrow.MintA)
	if err != nil {
		return errors.Wrap(err, "mint a")
	}
	mintB, err := h.ledger.Mint(db, escrow.MintB)
	if err != nil {
		return errors.Wrap(err, "mint b")
	}

	takerA, err := h.ledger.EnsureAssociated(ctx, db, taker, taker, escrow.MintA)
	if err != nil {
		return errors.Wrap(err, "taker account")
	}
	makerB, err := h.ledger.EnsureAssociated(ctx, db, taker, escrow.Maker, escrow.MintB)
	if err != nil {
		return errors.Wrap(err, "maker account")
	}
	takerB, _, err := token.AssociatedAddress(taker, escrow.MintB)
	if err != nil {
		return errors.Wrap(err, "taker account")
	}

	if err := h.ledger.TransferChecked(ctx, db, takerB, makerB, escrow.MintB, taker, escrow.Receive, mintB.Decimals); err != nil {
		return errors.Wrap(err, "counter payment")
	}

	ectx, err := authority.Sign(ctx, Extension, escrow.Seeds()...)
	if err != nil {
		return errors.Wrap(err, "escrow authority")
	}
	if err := h.ledger.TransferChecked(ectx, db, msg.Vault, takerA, escrow.MintA, msg.Escrow, vault.Amount, mintA.Decimals); err != nil {
		return errors.Wrap(err, "payout")
	}
	if err := h.ledger.CloseAccount(ectx, db, msg.Vault, taker, msg.Escrow); err != nil {
		return errors.Wrap(err, "close vault")
	}
	return closeRecord(ectx, db, h.bucket, h.ledger, msg.Escrow, escrow.Maker)
}

// RefundHandler returns the deposit to the maker.
type RefundHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	ledger token.Controller
}

var _ barter.Handler = RefundHandler{}

func (h RefundHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	msg, err := h.validate(tx)
	if err != nil {
		return nil, err
	}
	if err := dryRun(db, func(db barter.KVStore) error {
		_, err := h.refund(ctx, db, msg)
		return err
	}); err != nil {
		return nil, err
	}
	return &barter.CheckResult{GasAllocated: refundEscrowCost}, nil
}

// Deliver moves the vault balance back to the maker and removes both the
// vault and the record.
func (h RefundHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	msg, err := h.validate(tx)
	if err != nil {
		return nil, err
	}
	var maker barter.Address
	err = atomically(db, func(db barter.KVStore) error {
		maker, err = h.refund(ctx, db, msg)
		return err
	})
	if err != nil {
		return nil, err
	}
	barter.GetLogger(ctx).Debug("escrow refunded", "escrow", msg.Escrow, "maker", maker)
	return &barter.DeliverResult{Data: msg.Escrow}, nil
}

func (h RefundHandler) validate(tx barter.Tx) (*RefundMsg, error) {
	var msg RefundMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &msg, nil
}

func (h RefundHandler) refund(ctx barter.Context, db barter.KVStore, msg *RefundMsg) (barter.Address, error) {
	escrow, vault, err := loadEscrow(db, h.bucket, h.ledger, msg.Escrow, msg.MintA, msg.Vault)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, escrow.Maker) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the maker can refund")
	}

	makerA, err := h.ledger.EnsureAssociated(ctx, db, escrow.Maker, escrow.Maker, escrow.MintA)
	if err != nil {
		return nil, errors.Wrap(err, "maker account")
	}

	ectx, err := authority.Sign(ctx, Extension, escrow.Seeds()...)
	if err != nil {
		return nil, errors.Wrap(err, "escrow authority")
	}
	if err := h.ledger.Transfer(ectx, db, msg.Vault, makerA, msg.Escrow, vault.Amount); err != nil {
		return nil, errors.Wrap(err, "refund")
	}
	if err := h.ledger.CloseAccount(ectx, db, msg.Vault, escrow.Maker, msg.Escrow); err != nil {
		return nil, errors.Wrap(err, "close vault")
	}
	if err := closeRecord(ectx, db, h.bucket, h.ledger, msg.Escrow, escrow.Maker); err != nil {
		return nil, err
	}
	return escrow.Maker, nil
}

// loadEscrow loads the record and its vault, and checks that the addresses
// given by the caller are the ones derived from the record.
func loadEscrow(db barter.KVStore, bucket orm.ModelBucket, ledger token.Controller, addr, mintA, vault barter.Address) (*Escrow, *token.Account, error) {
	var escrow Escrow
	if err := bucket.One(db, addr, &escrow); err != nil {
		return nil, nil, errors.Wrap(err, "cannot load escrow from the store")
	}
	derived, err := escrow.Address()
	if err != nil {
		return nil, nil, errors.Wrap(err, "escrow address")
	}
	if !derived.Equals(addr) {
		return nil, nil, errors.Wrap(errors.ErrConstraint, "escrow address")
	}
	if !escrow.MintA.Equals(mintA) {
		return nil, nil, errors.Wrap(errors.ErrConstraint, "mint a")
	}

	want, _, err := token.AssociatedAddress(addr, escrow.MintA)
	if err != nil {
		return nil, nil, errors.Wrap(err, "vault address")
	}
	if !want.Equals(vault) {
		return nil, nil, errors.Wrap(errors.ErrConstraint, "vault address")
	}
	acc, err := ledger.Account(db, vault)
	if err != nil {
		return nil, nil, errors.Wrap(err, "vault")
	}
	if !acc.Mint.Equals(escrow.MintA) || !acc.Owner.Equals(addr) {
		return nil, nil, errors.Wrap(errors.ErrConstraint, "vault account")
	}
	return &escrow, acc, nil
}

// closeRecord deletes the record and sends its reserve to the maker.
func closeRecord(ctx barter.Context, db barter.KVStore, bucket orm.ModelBucket, ledger token.Controller, addr, maker barter.Address) error {
	if err := bucket.Delete(db, addr); err != nil {
		return errors.Wrap(err, "close record")
	}
	return errors.Wrap(ledger.Release(ctx, db, addr, maker), "record reserve")
}

// atomically runs fn on a cache of db. The cache is written only if fn
// succeeds.
func atomically(db barter.KVStore, fn func(barter.KVStore) error) error {
	cstore, ok := db.(barter.CacheableKVStore)
	if !ok {
		return errors.Wrap(errors.ErrHuman, "store cannot be cache wrapped")
	}
	cache := cstore.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	return errors.Wrap(cache.Write(), "writing cache")
}

// dryRun runs fn on a cache of db and always discards it.
func dryRun(db barter.KVStore, fn func(barter.KVStore) error) error {
	cstore, ok := db.(barter.CacheableKVStore)
	if !ok {
		return errors.Wrap(errors.ErrHuman, "store cannot be cache wrapped")
	}
	cache := cstore.CacheWrap()
	defer cache.Discard()
	return fn(cache)
}
