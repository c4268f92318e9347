// Package commands holds the command line interface of barterd.
package commands

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/iov-one/barter/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagHome    = "home"
	flagBind    = "bind"
	flagDebug   = "debug"
	flagMetrics = "metrics"
	flagChainID = "chain-id"
	flagAmount  = "amount"

	envPrefix  = "BARTERD"
	configName = "barterd"
)

// DefaultHome is used when neither the flag nor the environment sets a home
// directory.
var DefaultHome = filepath.Join(os.ExpandEnv("$HOME"), ".barterd")

// NewRootCmd returns the barterd command with all subcommands attached.
// Every flag can also be set with a BARTERD_ prefixed environment variable
// or in <home>/barterd.toml.
func NewRootCmd(logger log.Logger) *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:           "barterd",
		Short:         "Two party token swap node",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v, cmd)
		},
	}
	root.PersistentFlags().String(flagHome, DefaultHome, "directory to store files under")

	root.AddCommand(
		initCmd(v, logger),
		startCmd(v, logger),
		keysCmd(v),
		versionCmd(),
	)
	return root
}

// loadConfig binds the flags of cmd and reads the optional configuration
// file from the home directory.
func loadConfig(v *viper.Viper, cmd *cobra.Command) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configName)
	v.AddConfigPath(v.GetString(flagHome))
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errors.Wrapf(errors.ErrInput, "config: %s", err)
		}
	}
	return nil
}
