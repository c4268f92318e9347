/*
Package barterd links together all the various components
to construct the barterd app.
*/
package barterd

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/app"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/store/iavl"
	"github.com/iov-one/barter/x"
	"github.com/iov-one/barter/x/authority"
	"github.com/iov-one/barter/x/escrow"
	"github.com/iov-one/barter/x/sigs"
	"github.com/iov-one/barter/x/token"
	"github.com/iov-one/barter/x/utils"
	"github.com/prometheus/client_golang/prometheus"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// Name is returned by abci.Info.
const Name = "barterd"

// Authenticator accepts signatures and derived escrow authorities.
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{}, authority.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, metrics and recovery. metrics may be nil.
func Chain(metrics barter.Decorator) app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		metrics,
		utils.NewActionTagger(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		// on DeliverTx, a failed message still increments the nonce
		utils.NewSavepoint().OnDeliver(),
	)
}

// Router registers the ledger and the escrow handlers.
func Router(authFn x.Authenticator) *app.Router {
	r := app.NewRouter()
	ledger := token.NewController(authFn)
	token.RegisterRoutes(r, ledger)
	escrow.RegisterRoutes(r, authFn, ledger)
	return r
}

// QueryRouter returns a default query router,
// allowing access to "/escrows", "/mints", "/accounts", "/purses" and
// "/auth" with their indexes.
func QueryRouter() barter.QueryRouter {
	r := barter.NewQueryRouter()
	r.RegisterAll(
		escrow.RegisterQuery,
		token.RegisterQuery,
		sigs.RegisterQuery,
	)
	return r
}

// Initializers loads all genesis sections.
func Initializers() barter.Initializer {
	return barter.ChainInitializers{
		token.Initializer{},
	}
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into BaseApp.
func Stack(metrics barter.Decorator) barter.Handler {
	return Chain(metrics).WithHandler(Router(Authenticator()))
}

// Application constructs a basic ABCI application with
// the given arguments. If you are not sure what to use
// for the Handler, just use Stack().
func Application(name string, h barter.Handler, tx barter.TxDecoder, dbPath string, logger log.Logger, debug bool) (*app.BaseApp, error) {
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return nil, err
	}
	store, err := app.NewStoreApp(name, kv, QueryRouter(), context.Background())
	if err != nil {
		return nil, err
	}
	store.WithInit(Initializers()).WithLogger(logger).WithDebug(debug)
	return app.NewBaseApp(store, tx, h), nil
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path. An empty path keeps everything in memory.
func CommitKVStore(dbPath string) (barter.CommitKVStore, error) {
	if dbPath == "" {
		return iavl.MockCommitStore(), nil
	}

	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database name: %s", dbPath)
	}
	// Some external calls accidentally add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name), nil
}

// GenerateApp creates the application served by "barterd start". The
// database lives in home. A nil registerer disables metrics.
func GenerateApp(home string, logger log.Logger, debug bool, reg prometheus.Registerer) (abci.Application, error) {
	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "barter.db")
	}

	var metrics barter.Decorator
	if reg != nil {
		m, err := utils.NewMetrics(reg)
		if err != nil {
			return nil, err
		}
		metrics = m
	}
	return Application(Name, Stack(metrics), TxDecoder, dbPath, logger, debug)
}

// GenesisReserve is the reserve configuration used by GenInitOptions.
var GenesisReserve = token.Configuration{BaseReserve: 890, ReservePerByte: 7}

// GenInitOptions produces the app_state of a development chain. Every given
// address receives a native balance of amount.
func GenInitOptions(addrs []barter.Address, amount uint64) (json.RawMessage, error) {
	purses := make([]token.GenesisPurse, 0, len(addrs))
	for _, a := range addrs {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		purses = append(purses, token.GenesisPurse{Address: a, Amount: amount})
	}
	state := map[string]interface{}{
		"conf": map[string]interface{}{
			"token": GenesisReserve,
		},
		"token": token.Genesis{Purses: purses},
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}
