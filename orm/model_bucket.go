package orm

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
	Validate() error
}

// ModelBucket is a prefixed subspace of the database that holds models of a
// single type, together with their secondary indexes.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity, ErrType
	// is returned.
	One(db barter.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key value exists. It
	// returns ErrNotFound if no entity can be found.
	Has(db barter.ReadOnlyKVStore, key []byte) error

	// ByIndex returns all entities that are indexed under given key by the
	// named index. Destination must be a pointer to a slice of models. The
	// primary keys of the loaded entities are returned.
	ByIndex(db barter.ReadOnlyKVStore, indexName string, key []byte, dest ModelSlicePtr) ([][]byte, error)

	// Put saves given model in the database. Secondary indexes are updated.
	Put(db barter.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db barter.KVStore, key []byte) error

	// Register registers this bucket and all its indexes for queries under
	// the given name. Bucket name is used if name is empty.
	Register(name string, r barter.QueryRouter)
}

// ModelSlicePtr is a pointer to a slice of models, for example *[]*Escrow.
type ModelSlicePtr interface{}

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(mb *modelBucket)

// WithIndex configures the bucket to build an index with given name. All
// entities stored in the bucket are indexed using value returned by the
// indexer function. If an index is unique, there can be only one entity
// referenced per index value.
func WithIndex(name string, indexer Indexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		if _, ok := mb.indexes[name]; ok {
			panic(fmt.Sprintf("index %q registered twice", name))
		}
		mb.indexes[name] = newCompactIndex(mb.name+"_"+name, indexer, unique, mb.dbKey)
	}
}

// NewModelBucket returns a ModelBucket instance. The model is the prototype
// used to check that only one type of entity is stored.
func NewModelBucket(name string, m Model, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	mb := &modelBucket{
		name:    name,
		prefix:  append([]byte(name), ':'),
		model:   reflect.TypeOf(m),
		indexes: make(map[string]compactIndex),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	indexes map[string]compactIndex
}

var _ ModelBucket = (*modelBucket)(nil)

// dbKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consequetive calls to overwrite the same byte array.
func (mb *modelBucket) dbKey(key []byte) []byte {
	l := len(mb.prefix)
	out := make([]byte, l+len(key))
	copy(out, mb.prefix)
	copy(out[l:], key)
	return out
}

func (mb *modelBucket) One(db barter.ReadOnlyKVStore, key []byte, dest Model) error {
	if reflect.TypeOf(dest) != mb.model {
		return errors.Wrapf(errors.ErrType, "%T cannot be represented as %s", dest, mb.model)
	}
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "%s %X", mb.name, key)
	}
	return nil
}

func (mb *modelBucket) Has(db barter.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	return nil
}

func (mb *modelBucket) ByIndex(db barter.ReadOnlyKVStore, indexName string, key []byte, dest ModelSlicePtr) ([][]byte, error) {
	idx, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "unknown index %q", indexName)
	}

	ptr := reflect.ValueOf(dest)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Slice || ptr.Elem().Type().Elem() != mb.model {
		return nil, errors.Wrapf(errors.ErrType, "%T is not a pointer to a slice of %s", dest, mb.model)
	}

	pks, err := idx.Keys(db, key)
	if err != nil {
		return nil, err
	}
	slice := ptr.Elem()
	for _, pk := range pks {
		m := reflect.New(mb.model.Elem()).Interface().(Model)
		if err := mb.One(db, pk, m); err != nil {
			return nil, errors.Wrap(err, "indexed entity")
		}
		slice = reflect.Append(slice, reflect.ValueOf(m))
	}
	ptr.Elem().Set(slice)
	return pks, nil
}

func (mb *modelBucket) Put(db barter.KVStore, key []byte, m Model) error {
	if reflect.TypeOf(m) != mb.model {
		return errors.Wrapf(errors.ErrType, "cannot store %T in %s bucket", m, mb.name)
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot serialize")
	}

	if len(mb.indexes) > 0 {
		prev, err := mb.load(db, key)
		if err != nil {
			return err
		}
		if err := mb.updateIndexes(db, key, prev, m); err != nil {
			return err
		}
	}

	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db barter.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	if len(mb.indexes) > 0 {
		prev, err := mb.load(db, key)
		if err != nil {
			return err
		}
		if err := mb.updateIndexes(db, key, prev, nil); err != nil {
			return err
		}
	}
	return db.Delete(mb.dbKey(key))
}

// load returns the stored model or nil if it does not exist.
func (mb *modelBucket) load(db barter.ReadOnlyKVStore, key []byte) (Model, error) {
	m := reflect.New(mb.model.Elem()).Interface().(Model)
	switch err := mb.One(db, key, m); {
	case err == nil:
		return m, nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

// updateIndexes runs in the order of index names so that the write sequence
// does not depend on map iteration. All unique constraints are checked before
// the first write.
func (mb *modelBucket) updateIndexes(db barter.KVStore, key []byte, prev, save Model) error {
	names := make([]string, 0, len(mb.indexes))
	for name := range mb.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := mb.indexes[name].Check(db, key, save); err != nil {
			return err
		}
	}
	for _, name := range names {
		if err := mb.indexes[name].Update(db, key, prev, save); err != nil {
			return err
		}
	}
	return nil
}

func (mb *modelBucket) Register(name string, r barter.QueryRouter) {
	if name == "" {
		name = mb.name
	}
	root := "/" + name
	r.Register(root, mb)
	for iname, idx := range mb.indexes {
		r.Register(root+"/"+iname, idx)
	}
}

// Query handles queries from the QueryRouter
func (mb *modelBucket) Query(db barter.ReadOnlyKVStore, mod string, data []byte) ([]barter.Model, error) {
	switch mod {
	case barter.KeyQueryMod:
		key := mb.dbKey(data)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		// return nothing on miss
		if value == nil {
			return nil, nil
		}
		return []barter.Model{barter.Pair(key, value)}, nil
	case barter.PrefixQueryMod:
		return queryPrefix(db, mb.dbKey(data))
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
}
