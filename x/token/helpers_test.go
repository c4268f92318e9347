package token

import (
	"context"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/gconf"
	"github.com/iov-one/barter/store"
	"github.com/iov-one/barter/weavetest"
	"github.com/iov-one/barter/weavetest/assert"
)

var testConf = Configuration{BaseReserve: 100, ReservePerByte: 2}

// ledger prepares a configured store and a controller that authorizes the
// conditions set on the context by auth.
func ledger(t testing.TB) (barter.CacheableKVStore, BaseController, *weavetest.CtxAuth) {
	t.Helper()
	db := store.MemStore()
	assert.Nil(t, gconf.Save(db, confPkg, &testConf))
	auth := &weavetest.CtxAuth{Key: "auth"}
	return db, NewController(auth), auth
}

func reserve(size int) uint64 {
	r, err := testConf.Reserve(size)
	if err != nil {
		panic(err)
	}
	return r
}

// fund sets the native balance of an address directly.
func fund(t testing.TB, db barter.KVStore, addr barter.Address, amount uint64) {
	t.Helper()
	assert.Nil(t, NewPurseBucket().Put(db, addr, &Purse{Amount: amount}))
}

func signed(auth *weavetest.CtxAuth, conds ...barter.Condition) barter.Context {
	return auth.SetConditions(context.Background(), conds...)
}
