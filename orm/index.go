package orm

import (
	"bytes"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

const compactIdxPrefix = "_i."

// Indexer calculates the secondary index key for a given model. Returning a
// nil key means that the model is not indexed.
type Indexer func(Model) ([]byte, error)

// compactIndex is an index implementation that stores all indexed entities as
// a set, serialized and stored under single key. This implmentation should be
// used only for small sized index collection.
//
// The value is one primary key (unique), or a MultiRef of primary keys
// (!unique).
type compactIndex struct {
	name   string
	id     []byte
	unique bool
	index  Indexer
	refKey func([]byte) []byte
}

var _ barter.QueryHandler = compactIndex{}

func newCompactIndex(name string, indexer Indexer, unique bool, refKey func([]byte) []byte) compactIndex {
	return compactIndex{
		name:   name,
		id:     append([]byte(compactIdxPrefix), []byte(name+":")...),
		index:  indexer,
		unique: unique,
		refKey: refKey,
	}
}

// indexKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (i compactIndex) indexKey(key []byte) []byte {
	l := len(i.id)
	out := make([]byte, l+len(key))
	copy(out, i.id)
	copy(out[l:], key)
	return out
}

// Update handles updating the reference to the entity stored under pk in the
// secondary index.
//
// prev == nil means insert
// save == nil means delete
// both == nil is error
func (i compactIndex) Update(db barter.KVStore, pk []byte, prev, save Model) error {
	if prev == nil && save == nil {
		return errors.Wrap(errors.ErrHuman, "update requires at least one non-nil model")
	}
	var before, after []byte
	if prev != nil {
		k, err := i.index(prev)
		if err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
		before = k
	}
	if save != nil {
		k, err := i.index(save)
		if err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
		after = k
	}
	if prev != nil && save != nil && bytes.Equal(before, after) {
		return nil
	}
	if before != nil {
		if err := i.remove(db, before, pk); err != nil {
			return err
		}
	}
	if after != nil {
		if err := i.insert(db, after, pk); err != nil {
			return err
		}
	}
	return nil
}

// Check returns ErrDuplicate if saving the model under pk would break the
// unique constraint of this index.
func (i compactIndex) Check(db barter.ReadOnlyKVStore, pk []byte, save Model) error {
	if !i.unique || save == nil {
		return nil
	}
	index, err := i.index(save)
	if err != nil {
		return errors.Wrapf(err, "index %s", i.name)
	}
	if index == nil {
		return nil
	}
	val, err := db.Get(i.indexKey(index))
	if err != nil {
		return err
	}
	if val != nil && !bytes.Equal(val, pk) {
		return errors.Wrapf(errors.ErrDuplicate, "index %s: %X", i.name, index)
	}
	return nil
}

func (i compactIndex) insert(db barter.KVStore, index, pk []byte) error {
	key := i.indexKey(index)
	val, err := db.Get(key)
	if err != nil {
		return err
	}
	if i.unique {
		if val != nil && !bytes.Equal(val, pk) {
			return errors.Wrapf(errors.ErrDuplicate, "index %s: %X", i.name, index)
		}
		return db.Set(key, pk)
	}

	var refs MultiRef
	if val != nil {
		if err := refs.Unmarshal(val); err != nil {
			return err
		}
	}
	if err := refs.Add(pk); err != nil {
		return err
	}
	raw, err := refs.Marshal()
	if err != nil {
		return errors.Wrap(err, "marshal refs")
	}
	return db.Set(key, raw)
}

func (i compactIndex) remove(db barter.KVStore, index, pk []byte) error {
	key := i.indexKey(index)
	val, err := db.Get(key)
	if err != nil {
		return err
	}
	if val == nil {
		return errors.Wrapf(errors.ErrNotFound, "index %s: %X", i.name, index)
	}
	if i.unique {
		if !bytes.Equal(val, pk) {
			return errors.Wrapf(errors.ErrState, "index %s points to another entity", i.name)
		}
		return db.Delete(key)
	}

	var refs MultiRef
	if err := refs.Unmarshal(val); err != nil {
		return err
	}
	if err := refs.Remove(pk); err != nil {
		return err
	}
	if len(refs.Refs) == 0 {
		return db.Delete(key)
	}
	raw, err := refs.Marshal()
	if err != nil {
		return errors.Wrap(err, "marshal refs")
	}
	return db.Set(key, raw)
}

// Keys returns a list of all primary keys that were indexed under given
// value.
func (i compactIndex) Keys(db barter.ReadOnlyKVStore, index []byte) ([][]byte, error) {
	val, err := db.Get(i.indexKey(index))
	if err != nil {
		return nil, err
	}
	return i.refs(val)
}

func (i compactIndex) refs(val []byte) ([][]byte, error) {
	if val == nil {
		return nil, nil
	}
	if i.unique {
		return [][]byte{val}, nil
	}
	var refs MultiRef
	if err := refs.Unmarshal(val); err != nil {
		return nil, err
	}
	return refs.Refs, nil
}

// Query handles queries from the QueryRouter. Models returned are the
// indexed entities, keyed by their primary bucket key.
func (i compactIndex) Query(db barter.ReadOnlyKVStore, mod string, data []byte) ([]barter.Model, error) {
	var pks [][]byte
	switch mod {
	case barter.KeyQueryMod:
		keys, err := i.Keys(db, data)
		if err != nil {
			return nil, err
		}
		pks = keys
	case barter.PrefixQueryMod:
		entries, err := queryPrefix(db, i.indexKey(data))
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			keys, err := i.refs(e.Value)
			if err != nil {
				return nil, err
			}
			pks = append(pks, keys...)
		}
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}

	res := make([]barter.Model, 0, len(pks))
	for _, pk := range pks {
		key := i.refKey(pk)
		val, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		res = append(res, barter.Pair(key, val))
	}
	return res, nil
}
