package escrow

import (
	"github.com/iov-one/barter"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

func init() {
	cdc.RegisterInterface((*barter.Msg)(nil), nil)
	RegisterCodec(cdc)
}

// RegisterCodec registers all messages of this extension.
func RegisterCodec(cdc *amino.Codec) {
	cdc.RegisterConcrete(&MakeMsg{}, pathMakeMsg, nil)
	cdc.RegisterConcrete(&TakeMsg{}, pathTakeMsg, nil)
	cdc.RegisterConcrete(&RefundMsg{}, pathRefundMsg, nil)
}
