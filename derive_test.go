package barter_test

import (
	"encoding/binary"
	"testing"

	"filippo.io/edwards25519"
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func seedBytes(n uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, n)
	return b
}

func TestFindDerivedAddress(t *testing.T) {
	maker := barter.NewCondition("sigs", "ed25519", []byte("maker-public-key")).Address()

	Convey("Given a maker and a seed", t, func() {
		addr, bump, err := barter.FindDerivedAddress("escrow", maker, seedBytes(1))
		So(err, ShouldBeNil)
		So(len(addr), ShouldEqual, barter.AddressLength)

		Convey("the derivation is deterministic", func() {
			again, againBump, err := barter.FindDerivedAddress("escrow", maker, seedBytes(1))
			So(err, ShouldBeNil)
			So(again, ShouldResemble, addr)
			So(againBump, ShouldEqual, bump)
		})

		Convey("the stored bump recreates the address without search", func() {
			got, err := barter.CreateDerivedAddress("escrow", maker, seedBytes(1), []byte{bump})
			So(err, ShouldBeNil)
			So(got, ShouldResemble, addr)
		})

		Convey("the address is not a valid ed25519 point", func() {
			_, err := new(edwards25519.Point).SetBytes(addr)
			So(err, ShouldNotBeNil)
		})

		Convey("any different seed gives a different address", func() {
			other, _, err := barter.FindDerivedAddress("escrow", maker, seedBytes(2))
			So(err, ShouldBeNil)
			So(other, ShouldNotResemble, addr)

			other, _, err = barter.FindDerivedAddress("token", maker, seedBytes(1))
			So(err, ShouldBeNil)
			So(other, ShouldNotResemble, addr)

			taker := barter.NewCondition("sigs", "ed25519", []byte("taker-public-key")).Address()
			other, _, err = barter.FindDerivedAddress("escrow", taker, seedBytes(1))
			So(err, ShouldBeNil)
			So(other, ShouldNotResemble, addr)
		})

		Convey("a wrong bump fails closed", func() {
			got, err := barter.CreateDerivedAddress("escrow", maker, seedBytes(1), []byte{bump - 1})
			if err == nil {
				So(got, ShouldNotResemble, addr)
			} else {
				So(errors.ErrState.Is(err), ShouldBeTrue)
			}
		})
	})

	Convey("Seed boundaries are enforced", t, func() {
		_, err := barter.CreateDerivedAddress("escrow", make([]byte, barter.MaxSeedLength+1))
		So(errors.ErrInput.Is(err), ShouldBeTrue)

		seeds := make([][]byte, barter.MaxSeeds)
		for i := range seeds {
			seeds[i] = []byte{byte(i)}
		}
		_, _, err = barter.FindDerivedAddress("escrow", seeds...)
		So(errors.ErrInput.Is(err), ShouldBeTrue)

		_, err = barter.CreateDerivedAddress("escrow")
		So(errors.ErrInput.Is(err), ShouldBeTrue)
	})

	Convey("Seed boundaries are not ambiguous", t, func() {
		a, err := barter.DerivedCondition("escrow", []byte("ab"), []byte("c"))
		So(err, ShouldBeNil)
		b, err := barter.DerivedCondition("escrow", []byte("a"), []byte("bc"))
		So(err, ShouldBeNil)
		So(a.Equals(b), ShouldBeFalse)
	})
}
