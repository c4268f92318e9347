package crypto

import (
	"bytes"
	"testing"

	"github.com/iov-one/barter/weavetest/assert"
)

func TestEd25519Signing(t *testing.T) {
	private := GenPrivKeyEd25519()
	public := private.PublicKey()

	msg := []byte("foobar")
	msg2 := []byte("dingbooms")

	sig, err := private.Sign(msg)
	assert.Nil(t, err)
	sig2, err := private.Sign(msg2)
	assert.Nil(t, err)

	if bytes.Equal(sig.Ed25519, sig2.Ed25519) {
		t.Fatal("different messages produce the same signature")
	}

	if !public.Verify(msg, sig) {
		t.Fatal("cannot verify a message signed with this public key")
	}
	if !public.Verify(msg2, sig2) {
		t.Fatal("cannot verify a message signed with this public key")
	}

	if public.Verify(msg, sig2) {
		t.Fatal("verified message signature of the wrong message")
	}
	if public.Verify(msg2, sig) {
		t.Fatal("verified message signature of the wrong message")
	}

	if public.Verify(msg, &Signature{}) {
		t.Fatal("verified an empty signature of a message")
	}
	if public.Verify(msg, nil) {
		t.Fatal("verified a nil signature of a message")
	}

	other := GenPrivKeyEd25519().PublicKey()
	if other.Verify(msg, sig) {
		t.Fatal("verified a signature with the wrong public key")
	}
}

func TestEd25519FromSeed(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	a := PrivKeyEd25519FromSeed(seed)
	b := PrivKeyEd25519FromSeed(seed)
	assert.Equal(t, a.PublicKey().Ed25519, b.PublicKey().Ed25519)
	assert.Equal(t, a.PublicKey().Address(), b.PublicKey().Address())

	c := PrivKeyEd25519FromSeed(bytes.Repeat([]byte{8}, 32))
	if a.PublicKey().Address().Equals(c.PublicKey().Address()) {
		t.Fatal("different seeds produce the same address")
	}
	assert.Equal(t, "sigs/ed25519/", string(a.PublicKey().Condition()[:13]))
}
