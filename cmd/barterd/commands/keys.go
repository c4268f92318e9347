package commands

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/crypto"
	"github.com/iov-one/barter/crypto/bech32"
	"github.com/iov-one/barter/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	keyFile = "key.json"

	flagSeed = "seed"
	flagPath = "path"
)

func keysCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the local signing key",
	}
	create := &cobra.Command{
		Use:   "new",
		Short: "Generate a new key in the home directory",
		Long: `Generates a random key. With --seed the key is derived from the hex
encoded seed at --path instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := newKey(v.GetString(flagHome), v.GetString(flagSeed), v.GetString(flagPath))
			if err != nil {
				return err
			}
			return printAddress(cmd.OutOrStdout(), key.PublicKey().Address())
		},
	}
	create.Flags().String(flagSeed, "", "hex encoded seed to derive the key from")
	create.Flags().String(flagPath, crypto.DefaultPath, "hardened derivation path used with --seed")

	cmd.AddCommand(
		create,
		&cobra.Command{
			Use:   "show",
			Short: "Print the address of the local key",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := loadKey(v.GetString(flagHome))
				if err != nil {
					return err
				}
				return printAddress(cmd.OutOrStdout(), key.PublicKey().Address())
			},
		},
	)
	return cmd
}

// newKey creates a key and stores it in home. An existing key is never
// overwritten. An empty seed gives a random key.
func newKey(home, seed, path string) (*crypto.PrivateKey, error) {
	keyPath := filepath.Join(home, keyFile)
	if _, err := os.Stat(keyPath); err == nil {
		return nil, errors.Wrapf(errors.ErrDuplicate, "key file %s", keyPath)
	}
	if err := os.MkdirAll(home, 0700); err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}

	key := crypto.GenPrivKeyEd25519()
	if seed != "" {
		raw, err := hex.DecodeString(seed)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, "seed is not hex")
		}
		if key, err = crypto.DeriveKey(raw, path); err != nil {
			return nil, err
		}
	}
	raw, err := json.Marshal(key)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := ioutil.WriteFile(keyPath, raw, 0600); err != nil {
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	return key, nil
}

// loadKey reads the key stored in home.
func loadKey(home string) (*crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(filepath.Join(home, keyFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrNotFound, "no key, run keys new first")
		}
		return nil, errors.Wrap(errors.ErrHuman, err.Error())
	}
	var key crypto.PrivateKey
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return &key, nil
}

func printAddress(w io.Writer, addr barter.Address) error {
	b32, err := bech32.Encode(bech32.HRP, addr)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "hex:    %s\nbech32: %s\n", hex.EncodeToString(addr), b32)
	return err
}
