package token

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
	cdc.RegisterConcrete(&CreateMintMsg{}, pathCreateMintMsg, nil)
	cdc.RegisterConcrete(&MintToMsg{}, pathMintToMsg, nil)
	cdc.RegisterConcrete(&CreateAccountMsg{}, pathCreateAccountMsg, nil)
	cdc.RegisterConcrete(&TransferMsg{}, pathTransferMsg, nil)
	cdc.RegisterConcrete(&SendNativeMsg{}, pathSendNativeMsg, nil)
}
