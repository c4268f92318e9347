package orm

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

// queryPrefix returns all key value pairs stored under given prefix.
func queryPrefix(db barter.ReadOnlyKVStore, prefix []byte) ([]barter.Model, error) {
	it, err := db.Iterator(prefix, prefixEnd(prefix))
	if err != nil {
		return nil, err
	}
	return consumeIterator(it)
}

// consumeIterator will read all remaining data into an array and release
// the iterator.
func consumeIterator(it barter.Iterator) ([]barter.Model, error) {
	defer it.Release()

	var res []barter.Model
	for {
		switch key, value, err := it.Next(); {
		case err == nil:
			res = append(res, barter.Pair(key, value))
		case errors.ErrIteratorDone.Is(err):
			return res, nil
		default:
			return nil, err
		}
	}
}

// prefixEnd returns the end key of a prefix range, the first key that does
// not start with the prefix. It returns nil if no such key exists.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
