package barter

import (
	"fmt"

	"github.com/iov-one/barter/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
)

// DeliverResult is the outcome of a successfully delivered transaction.
// Failures are always reported through the returned error.
type DeliverResult struct {
	// Data is returned to the client, for example the address of a new
	// escrow.
	Data []byte
	Log  string
	// Tags are indexed by tendermint and allow to search for transactions.
	Tags    []common.KVPair
	GasUsed int64
}

// ToABCI converts the result into a DeliverTx response.
func (d DeliverResult) ToABCI() abci.ResponseDeliverTx {
	return abci.ResponseDeliverTx{
		Data:    d.Data,
		Log:     d.Log,
		Tags:    d.Tags,
		GasUsed: d.GasUsed,
	}
}

// CheckResult is the outcome of a transaction that passed the mempool check.
type CheckResult struct {
	Data []byte
	Log  string
	// GasAllocated is the maximum amount of work this transaction may
	// perform.
	GasAllocated int64
	GasPayment   int64
}

// NewCheck returns a check result with the allocated gas and a log line.
func NewCheck(gasAllocated int64, log string) *CheckResult {
	return &CheckResult{GasAllocated: gasAllocated, Log: log}
}

// ToABCI converts the result into a CheckTx response.
func (c CheckResult) ToABCI() abci.ResponseCheckTx {
	return abci.ResponseCheckTx{
		Data:      c.Data,
		Log:       c.Log,
		GasWanted: c.GasAllocated,
	}
}

// DeliverOrError builds the DeliverTx response from the values returned by
// a handler.
func DeliverOrError(result *DeliverResult, err error, debug bool) abci.ResponseDeliverTx {
	if err != nil {
		return DeliverTxError(err, debug)
	}
	return result.ToABCI()
}

// CheckOrError builds the CheckTx response from the values returned by a
// handler.
func CheckOrError(result *CheckResult, err error, debug bool) abci.ResponseCheckTx {
	if err != nil {
		return CheckTxError(err, debug)
	}
	return result.ToABCI()
}

// DeliverTxError reports err as a failed DeliverTx. Internal details are
// only exposed in debug mode.
func DeliverTxError(err error, debug bool) abci.ResponseDeliverTx {
	code, log := abciInfo("deliver", err, debug)
	return abci.ResponseDeliverTx{Code: code, Log: log}
}

// CheckTxError reports err as a failed CheckTx.
func CheckTxError(err error, debug bool) abci.ResponseCheckTx {
	code, log := abciInfo("check", err, debug)
	return abci.ResponseCheckTx{Code: code, Log: log}
}

// QueryError reports err as a failed query.
func QueryError(err error, debug bool) abci.ResponseQuery {
	code, log := errors.ABCIInfo(err, debug)
	return abci.ResponseQuery{Code: code, Log: log}
}

func abciInfo(stage string, err error, debug bool) (uint32, string) {
	code, log := errors.ABCIInfo(err, debug)
	if code != errors.SuccessABCICode {
		log = fmt.Sprintf("cannot %s tx: %s", stage, log)
	}
	return code, log
}
