package barterd

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/app"
	"github.com/iov-one/barter/crypto"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/x/escrow"
	"github.com/iov-one/barter/x/sigs"
	"github.com/iov-one/barter/x/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const chainID = "barter-devnet"

type user struct {
	key *crypto.PrivateKey
	seq int64
}

func newUser() *user {
	return &user{key: crypto.GenPrivKeyEd25519()}
}

func (u *user) addr() barter.Address {
	return u.key.PublicKey().Address()
}

// sign builds a signed transaction with the next sequence of the user.
func (u *user) sign(t testing.TB, msg barter.Msg) []byte {
	t.Helper()
	tx := &Tx{Msg: msg}
	sig, err := sigs.SignTx(u.key, tx, chainID, u.seq)
	require.NoError(t, err)
	u.seq++
	tx.Signatures = []*sigs.StdSignature{sig}
	raw, err := tx.Marshal()
	require.NoError(t, err)
	return raw
}

type testChain struct {
	t            testing.TB
	app          *app.BaseApp
	maker, taker *user
	mintA, mintB barter.Address
	height       int64
}

// newTestChain starts a chain where the maker holds 500 of mint A and the
// taker holds 300 of mint B.
func newTestChain(t testing.TB) *testChain {
	t.Helper()
	issuer, maker, taker := newUser(), newUser(), newUser()

	mintA, err := token.MintAddress(issuer.addr(), "AAA")
	require.NoError(t, err)
	mintB, err := token.MintAddress(issuer.addr(), "BBB")
	require.NoError(t, err)

	raw, err := GenInitOptions([]barter.Address{maker.addr(), taker.addr()}, 10000)
	require.NoError(t, err)
	var state map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &state))
	gen := token.Genesis{
		Mints: []token.GenesisMint{
			{Authority: issuer.addr(), Ticker: "AAA", Decimals: 6},
			{Authority: issuer.addr(), Ticker: "BBB", Decimals: 2},
		},
		Accounts: []token.GenesisAccount{
			{Owner: maker.addr(), Mint: mintA, Amount: 500},
			{Owner: taker.addr(), Mint: mintB, Amount: 300},
		},
	}
	require.NoError(t, json.Unmarshal(state["token"], &gen))
	state["token"], err = json.Marshal(gen)
	require.NoError(t, err)
	appState, err := json.Marshal(state)
	require.NoError(t, err)

	a, err := Application("barterd-test", Stack(nil), TxDecoder, "", log.NewNopLogger(), false)
	require.NoError(t, err)
	a.InitChain(abci.RequestInitChain{ChainId: chainID, AppStateBytes: appState})

	c := &testChain{t: t, app: a, maker: maker, taker: taker, mintA: mintA, mintB: mintB}
	c.begin()
	return c
}

func (c *testChain) begin() {
	c.height++
	c.app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: c.height, ChainID: chainID}})
}

func (c *testChain) commit() {
	c.app.Commit()
	c.begin()
}

func (c *testChain) deliver(u *user, msg barter.Msg) abci.ResponseDeliverTx {
	c.t.Helper()
	raw := u.sign(c.t, msg)
	check := c.app.CheckTx(raw)
	require.Equal(c.t, uint32(0), check.Code, check.Log)
	return c.app.DeliverTx(raw)
}

// query returns the committed models under path for the given key.
func (c *testChain) query(path string, key []byte) []barter.Model {
	c.t.Helper()
	res := c.app.Query(abci.RequestQuery{Path: path, Data: key})
	require.Equal(c.t, uint32(0), res.Code, res.Log)
	var keys, values app.ResultSet
	require.NoError(c.t, keys.Unmarshal(res.Key))
	require.NoError(c.t, values.Unmarshal(res.Value))
	models, err := app.JoinResults(&keys, &values)
	require.NoError(c.t, err)
	return models
}

func (c *testChain) balance(owner, mint barter.Address) uint64 {
	c.t.Helper()
	addr, _, err := token.AssociatedAddress(owner, mint)
	require.NoError(c.t, err)
	models := c.query("/accounts", addr)
	if len(models) == 0 {
		return 0
	}
	var acc token.Account
	require.NoError(c.t, acc.Unmarshal(models[0].Value))
	return acc.Amount
}

// open makes an escrow of 120 A against 80 B and commits the block.
func (c *testChain) open(seed uint64) (barter.Address, barter.Address) {
	c.t.Helper()
	res := c.deliver(c.maker, &escrow.MakeMsg{
		Maker:   c.maker.addr(),
		MintA:   c.mintA,
		MintB:   c.mintB,
		Seed:    seed,
		Deposit: 120,
		Receive: 80,
	})
	require.Equal(c.t, uint32(0), res.Code, res.Log)
	addr, _, err := escrow.FindAddress(c.maker.addr(), seed)
	require.NoError(c.t, err)
	assert.Equal(c.t, []byte(addr), res.Data)
	vault, _, err := token.AssociatedAddress(addr, c.mintA)
	require.NoError(c.t, err)
	c.commit()
	return addr, vault
}

func TestEscrowOverABCI(t *testing.T) {
	c := newTestChain(t)
	addr, vault := c.open(7)

	models := c.query("/escrows", addr)
	require.Len(t, models, 1)
	var e escrow.Escrow
	require.NoError(t, e.Unmarshal(models[0].Value))
	assert.Equal(t, uint64(80), e.Receive)
	assert.Len(t, c.query("/escrows/maker", c.maker.addr()), 1)
	assert.Equal(t, uint64(120), c.balance(addr, c.mintA))
	assert.Equal(t, uint64(380), c.balance(c.maker.addr(), c.mintA))

	res := c.deliver(c.taker, &escrow.TakeMsg{
		Escrow: addr,
		Maker:  c.maker.addr(),
		MintA:  c.mintA,
		MintB:  c.mintB,
		Vault:  vault,
	})
	require.Equal(t, uint32(0), res.Code, res.Log)
	assert.NotEmpty(t, res.Tags)
	c.commit()

	assert.Empty(t, c.query("/escrows", addr))
	assert.Empty(t, c.query("/accounts", vault))
	assert.Equal(t, uint64(380), c.balance(c.maker.addr(), c.mintA))
	assert.Equal(t, uint64(80), c.balance(c.maker.addr(), c.mintB))
	assert.Equal(t, uint64(120), c.balance(c.taker.addr(), c.mintA))
	assert.Equal(t, uint64(220), c.balance(c.taker.addr(), c.mintB))

	// Both signers have used a nonce.
	assert.Len(t, c.query("/auth", c.taker.addr()), 1)
	nonce, err := sigs.NextNonce(c.app.DeliverStore(), c.maker.addr())
	require.NoError(t, err)
	assert.Equal(t, c.maker.seq, nonce)
}

func TestRejectsUnsignedTx(t *testing.T) {
	c := newTestChain(t)
	tx := &Tx{Msg: &escrow.MakeMsg{
		Maker:   c.maker.addr(),
		MintA:   c.mintA,
		MintB:   c.mintB,
		Seed:    1,
		Deposit: 10,
		Receive: 10,
	}}
	raw, err := tx.Marshal()
	require.NoError(t, err)
	res := c.app.DeliverTx(raw)
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), res.Code)

	// A different signer cannot make an escrow for the maker.
	forged := c.taker.sign(t, tx.Msg)
	res = c.app.DeliverTx(forged)
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), res.Code)
}

func TestConcurrentSettlement(t *testing.T) {
	c := newTestChain(t)
	addr, vault := c.open(3)

	take := c.taker.sign(t, &escrow.TakeMsg{
		Escrow: addr,
		Maker:  c.maker.addr(),
		MintA:  c.mintA,
		MintB:  c.mintB,
		Vault:  vault,
	})
	refund := c.maker.sign(t, &escrow.RefundMsg{
		Escrow: addr,
		MintA:  c.mintA,
		Vault:  vault,
	})

	var (
		wg    sync.WaitGroup
		codes = make([]uint32, 2)
	)
	for i, raw := range [][]byte{take, refund} {
		wg.Add(1)
		go func(i int, raw []byte) {
			defer wg.Done()
			codes[i] = c.app.DeliverTx(raw).Code
		}(i, raw)
	}
	wg.Wait()
	c.commit()

	var ok, missing int
	for _, code := range codes {
		switch code {
		case 0:
			ok++
		case errors.ErrNotFound.ABCICode():
			missing++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, missing)
	assert.Empty(t, c.query("/escrows", addr))
	assert.Equal(t, uint64(0), c.balance(addr, c.mintA))

	// The deposit went exactly once to one side.
	total := c.balance(c.maker.addr(), c.mintA) + c.balance(c.taker.addr(), c.mintA)
	assert.Equal(t, uint64(500), total)
}

func TestGenerateAppWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := GenerateApp("", log.NewNopLogger(), false, reg)
	require.NoError(t, err)
	info := a.Info(abci.RequestInfo{})
	assert.Equal(t, Name, info.Data)

	// The collectors are registered once per registry.
	_, err = GenerateApp("", log.NewNopLogger(), false, reg)
	assert.Error(t, err)
}

func TestTxCodec(t *testing.T) {
	u := newUser()
	msg := &escrow.RefundMsg{Escrow: u.addr(), MintA: u.addr(), Vault: u.addr()}
	raw := u.sign(t, msg)

	tx, err := TxDecoder(raw)
	require.NoError(t, err)
	got, err := tx.GetMsg()
	require.NoError(t, err)
	assert.Equal(t, msg, got)
	require.Len(t, tx.(*Tx).GetSignatures(), 1)

	_, err = TxDecoder([]byte("garbage"))
	assert.True(t, errors.ErrInput.Is(err))

	_, err = (&Tx{}).GetMsg()
	assert.True(t, errors.ErrMsg.Is(err))
}
