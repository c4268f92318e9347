package commands

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/iov-one/barter"
	barterd "github.com/iov-one/barter/cmd/barterd/app"
	"github.com/iov-one/barter/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"
)

// GenesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format,
// so we can add one line.
type GenesisDoc map[string]json.RawMessage

func initCmd(v *viper.Viper, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [address...]",
		Short: "Initialize app state in the genesis file",
		Long: `Writes the app_state of <home>/config/genesis.json. Every address
given, and the local key when present, receives a native balance.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initGenesis(v, logger, args)
		},
	}
	cmd.Flags().String(flagChainID, "barter-devnet", "chain id of a newly created genesis file")
	cmd.Flags().Uint64(flagAmount, 1000000000, "native balance of every genesis address")
	return cmd
}

func initGenesis(v *viper.Viper, logger log.Logger, args []string) error {
	home := v.GetString(flagHome)

	addrs := make([]barter.Address, 0, len(args)+1)
	for _, a := range args {
		addr, err := barter.ParseAddress(a)
		if err != nil {
			return errors.Wrapf(err, "address %q", a)
		}
		addrs = append(addrs, addr)
	}
	switch key, err := loadKey(home); {
	case err == nil:
		addrs = append(addrs, key.PublicKey().Address())
	case !errors.ErrNotFound.Is(err):
		return err
	}

	state, err := barterd.GenInitOptions(addrs, v.GetUint64(flagAmount))
	if err != nil {
		return err
	}

	genFile := filepath.Join(home, "config", "genesis.json")
	if err := ensureGenesis(genFile, v.GetString(flagChainID)); err != nil {
		return err
	}
	if err := addGenesisOptions(genFile, state); err != nil {
		return err
	}
	logger.Info("Wrote app state", "path", genFile, "accounts", len(addrs))
	return nil
}

// ensureGenesis creates a minimal genesis file unless one already exists.
func ensureGenesis(filename, chainID string) error {
	if _, err := os.Stat(filename); err == nil {
		return nil
	}
	if !barter.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id %q", chainID)
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0700); err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}
	doc := GenesisDoc{
		"genesis_time": json.RawMessage(fmt.Sprintf("%q", time.Now().UTC().Format(time.RFC3339))),
		"chain_id":     json.RawMessage(fmt.Sprintf("%q", chainID)),
	}
	return writeGenesis(filename, doc)
}

func addGenesisOptions(filename string, options json.RawMessage) error {
	bz, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}

	var doc GenesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return errors.Wrapf(errors.ErrInput, "genesis file: %s", err)
	}
	doc["app_state"] = options
	return writeGenesis(filename, doc)
}

func writeGenesis(filename string, doc GenesisDoc) error {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := ioutil.WriteFile(filename, out, 0600); err != nil {
		return errors.Wrap(errors.ErrHuman, err.Error())
	}
	return nil
}
