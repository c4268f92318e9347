package commands

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/x/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd(log.NewNopLogger())
	root.SetOutput(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func tempHome(t *testing.T) string {
	t.Helper()
	home, err := ioutil.TempDir("", "barterd")
	require.NoError(t, err)
	return home
}

func TestKeys(t *testing.T) {
	home := tempHome(t)
	defer os.RemoveAll(home)

	created := run(t, "keys", "new", "--home", home)
	assert.Contains(t, created, "bech32: barter1")
	assert.Equal(t, created, run(t, "keys", "show", "--home", home))

	// An existing key is never replaced.
	root := NewRootCmd(log.NewNopLogger())
	root.SetOutput(&bytes.Buffer{})
	root.SetArgs([]string{"keys", "new", "--home", home})
	assert.Error(t, root.Execute())
}

func TestDerivedKey(t *testing.T) {
	const seed = "000102030405060708090a0b0c0d0e0f"
	a, b := tempHome(t), tempHome(t)
	defer os.RemoveAll(a)
	defer os.RemoveAll(b)

	first := run(t, "keys", "new", "--home", a, "--seed", seed)
	second := run(t, "keys", "new", "--home", b, "--seed", seed)
	assert.Equal(t, first, second)

	other := tempHome(t)
	defer os.RemoveAll(other)
	assert.NotEqual(t, first, run(t, "keys", "new", "--home", other, "--seed", seed, "--path", "m/44'/234'/1'"))
}

func TestInit(t *testing.T) {
	home := tempHome(t)
	defer os.RemoveAll(home)

	run(t, "keys", "new", "--home", home)
	key, err := loadKey(home)
	require.NoError(t, err)

	other := barter.NewCondition("sigs", "ed25519", []byte("other")).Address()
	run(t, "init", "--home", home, "--amount", "777", "hex:"+other.String())

	raw, err := ioutil.ReadFile(filepath.Join(home, "config", "genesis.json"))
	require.NoError(t, err)
	var doc GenesisDoc
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, `"barter-devnet"`, string(doc["chain_id"]))

	var state struct {
		Token token.Genesis `json:"token"`
	}
	require.NoError(t, json.Unmarshal(doc["app_state"], &state))
	require.Len(t, state.Token.Purses, 2)
	assert.Equal(t, other, state.Token.Purses[0].Address)
	assert.Equal(t, key.PublicKey().Address(), state.Token.Purses[1].Address)
	assert.Equal(t, uint64(777), state.Token.Purses[1].Amount)
}

func TestEnvOverridesDefault(t *testing.T) {
	home := tempHome(t)
	defer os.RemoveAll(home)

	os.Setenv("BARTERD_AMOUNT", "42")
	defer os.Unsetenv("BARTERD_AMOUNT")
	addr := barter.NewCondition("sigs", "ed25519", []byte("env")).Address()
	run(t, "init", "--home", home, "--chain-id", "env-chain", "hex:"+addr.String())

	raw, err := ioutil.ReadFile(filepath.Join(home, "config", "genesis.json"))
	require.NoError(t, err)
	var doc GenesisDoc
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, `"env-chain"`, string(doc["chain_id"]))
	var state struct {
		Token token.Genesis `json:"token"`
	}
	require.NoError(t, json.Unmarshal(doc["app_state"], &state))
	require.Len(t, state.Token.Purses, 1)
	assert.Equal(t, uint64(42), state.Token.Purses[0].Amount)
}

func TestVersion(t *testing.T) {
	assert.Equal(t, barter.Version()+"\n", run(t, "version"))
}
