package escrow

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
)

const (
	// Extension is the namespace of escrow addresses.
	Extension = "escrow"

	// BucketName is where escrow records are stored.
	BucketName = "escrow"

	// RecordSize is the size of a serialized Escrow.
	RecordSize = 8 + 8 + 3*barter.AddressLength + 8 + 1
)

// discriminator tags a serialized Escrow.
var discriminator = func() []byte {
	h := sha256.Sum256([]byte("account:Escrow"))
	return h[:8]
}()

// Escrow is the record of one open swap. It is stored under its own derived
// address.
type Escrow struct {
	Seed    uint64
	Maker   barter.Address
	MintA   barter.Address
	MintB   barter.Address
	Receive uint64
	Bump    uint8
}

var _ orm.Model = (*Escrow)(nil)

// Marshal encodes the record into its fixed size layout.
func (e *Escrow) Marshal() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	raw := make([]byte, RecordSize)
	copy(raw[0:8], discriminator)
	binary.LittleEndian.PutUint64(raw[8:16], e.Seed)
	copy(raw[16:48], e.Maker)
	copy(raw[48:80], e.MintA)
	copy(raw[80:112], e.MintB)
	binary.LittleEndian.PutUint64(raw[112:120], e.Receive)
	raw[120] = e.Bump
	return raw, nil
}

func (e *Escrow) Unmarshal(raw []byte) error {
	if len(raw) != RecordSize {
		return errors.Wrapf(errors.ErrModel, "escrow size %d", len(raw))
	}
	if !bytes.Equal(raw[0:8], discriminator) {
		return errors.Wrap(errors.ErrModel, "not an escrow record")
	}
	e.Seed = binary.LittleEndian.Uint64(raw[8:16])
	e.Maker = barter.Address(append([]byte(nil), raw[16:48]...))
	e.MintA = barter.Address(append([]byte(nil), raw[48:80]...))
	e.MintB = barter.Address(append([]byte(nil), raw[80:112]...))
	e.Receive = binary.LittleEndian.Uint64(raw[112:120])
	e.Bump = raw[120]
	return nil
}

func (e *Escrow) Validate() error {
	if err := e.Maker.Validate(); err != nil {
		return errors.Wrap(err, "maker")
	}
	if err := e.MintA.Validate(); err != nil {
		return errors.Wrap(err, "mint a")
	}
	if err := e.MintB.Validate(); err != nil {
		return errors.Wrap(err, "mint b")
	}
	if e.MintA.Equals(e.MintB) {
		return errors.Wrap(errors.ErrInput, "same mint on both sides")
	}
	if e.Receive == 0 {
		return errors.Wrap(errors.ErrAmount, "receive")
	}
	return nil
}

// Seeds returns the full seed list of the record address, bump included.
func (e *Escrow) Seeds() [][]byte {
	return [][]byte{e.Maker, seedBytes(e.Seed), {e.Bump}}
}

// Address recomputes the record address from the stored fields.
func (e *Escrow) Address() (barter.Address, error) {
	return barter.CreateDerivedAddress(Extension, e.Seeds()...)
}

// FindAddress returns the address and bump of the record made by maker with
// given seed.
func FindAddress(maker barter.Address, seed uint64) (barter.Address, uint8, error) {
	return barter.FindDerivedAddress(Extension, maker, seedBytes(seed))
}

func seedBytes(seed uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, seed)
	return b
}

// NewBucket returns the bucket of escrow records, indexed by maker and by
// both mints.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Escrow{},
		orm.WithIndex("maker", makerIndex, false),
		orm.WithIndex("mint_a", mintAIndex, false),
		orm.WithIndex("mint_b", mintBIndex, false),
	)
}

// RegisterQuery will register this bucket as "/escrows"
func RegisterQuery(qr barter.QueryRouter) {
	NewBucket().Register("escrows", qr)
}

func asEscrow(m orm.Model) (*Escrow, error) {
	e, ok := m.(*Escrow)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return e, nil
}

func makerIndex(m orm.Model) ([]byte, error) {
	e, err := asEscrow(m)
	if err != nil {
		return nil, err
	}
	return e.Maker, nil
}

func mintAIndex(m orm.Model) ([]byte, error) {
	e, err := asEscrow(m)
	if err != nil {
		return nil, err
	}
	return e.MintA, nil
}

func mintBIndex(m orm.Model) ([]byte, error) {
	e, err := asEscrow(m)
	if err != nil {
		return nil, err
	}
	return e.MintB, nil
}
