package barter_test

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/crypto/bech32"
	"github.com/iov-one/barter/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAddressPrinting(t *testing.T) {
	Convey("test hexademical address printing", t, func() {
		addr := barter.NewCondition("foo", "bar", []byte("ABCD123456LHB")).Address()

		So(addr.String(), ShouldEqual, fmt.Sprintf("%X", []byte(addr)))
		So(len(addr), ShouldEqual, barter.AddressLength)
	})

	Convey("test hexademical condition printing", t, func() {
		cond := barter.NewCondition("foo", "bar", []byte("ABCD123456LHB"))

		So(cond.String(), ShouldNotEqual, fmt.Sprintf("%X", cond))
		So(cond.String(), ShouldStartWith, "foo/bar/")
	})
}

func TestAddressUnmarshalJSON(t *testing.T) {
	addr := barter.NewCondition("foo", "bar", []byte("conditiondata")).Address()
	hexAddr := strings.ToUpper(fmt.Sprintf("%x", []byte(addr)))
	bech, err := bech32.Encode("brt", addr)
	if err != nil {
		t.Fatalf("cannot bech32 encode: %s", err)
	}

	cases := map[string]struct {
		json     string
		wantErr  *errors.Error
		wantAddr barter.Address
	}{
		"default decoding": {
			json:     `"` + hexAddr + `"`,
			wantAddr: addr,
		},
		"hex decoding": {
			json:     `"hex:` + hexAddr + `"`,
			wantAddr: addr,
		},
		"cond decoding": {
			json:     `"cond:foo/bar/636f6e646974696f6e64617461"`,
			wantAddr: addr,
		},
		"bech32 decoding": {
			json:     `"bech32:` + string(bech) + `"`,
			wantAddr: addr,
		},
		"hex address too short": {
			json:    `"6865782d61646472"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition format": {
			json:    `"cond:foo/636f6e646974696f6e64617461"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition data": {
			json:    `"cond:foo/bar/zzzzz"`,
			wantErr: errors.ErrInput,
		},
		"unknown format": {
			json:    `"foobar:xxx"`,
			wantErr: errors.ErrType,
		},
		"zero address": {
			json:     `""`,
			wantAddr: nil,
		},
		"zero hex address": {
			json:     `"hex:"`,
			wantAddr: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var a barter.Address
			err := json.Unmarshal([]byte(tc.json), &a)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if err == nil && !reflect.DeepEqual(a, tc.wantAddr) {
				t.Fatalf("got address: %q", a)
			}
		})
	}
}

func TestConditionUnmarshalJSON(t *testing.T) {
	cases := map[string]struct {
		json          string
		wantErr       *errors.Error
		wantCondition barter.Condition
	}{
		"default decoding": {
			json:          `"foo/bar/636f6e646974696f6e64617461"`,
			wantCondition: barter.NewCondition("foo", "bar", []byte("conditiondata")),
		},
		"invalid condition format": {
			json:    `"foo/636f6e646974696f6e64617461"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition data": {
			json:    `"foo/bar/zzzzz"`,
			wantErr: errors.ErrInput,
		},
		"zero address": {
			json:          `""`,
			wantCondition: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got barter.Condition
			err := json.Unmarshal([]byte(tc.json), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if err == nil && !got.Equals(tc.wantCondition) {
				t.Fatalf("got condition: %v", got)
			}
		})
	}
}

func TestValidateCondition(t *testing.T) {
	Convey("conditions are validated by format", t, func() {
		So(barter.NewCondition("escrow", "derived", []byte{1}).Validate(), ShouldBeNil)
		So(barter.NewCondition("a", "derived", []byte{1}).Validate(), ShouldNotBeNil)
		So(barter.NewCondition("escrow", "de rived", []byte{1}).Validate(), ShouldNotBeNil)
		So(barter.Condition("escrow/derived/").Validate(), ShouldNotBeNil)
	})
}
