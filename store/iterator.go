package store

import (
	"bytes"

	"github.com/iov-one/barter/errors"
)

// mergeIterator combines the cached items of a BTreeCacheWrap with the
// iterator of its backing store. When both hold the same key the cached item
// wins. Cached deletes hide the backing value.
type mergeIterator struct {
	parent     Iterator
	parentDone bool
	peeked     bool
	pkey, pval []byte

	local   []item
	idx     int
	reverse bool
}

var _ Iterator = (*mergeIterator)(nil)

func (m *mergeIterator) Next() ([]byte, []byte, error) {
	for {
		if err := m.peek(); err != nil {
			return nil, nil, err
		}

		localDone := m.idx >= len(m.local)
		if localDone && m.parentDone {
			return nil, nil, errors.ErrIteratorDone
		}

		useLocal := !localDone
		if !localDone && !m.parentDone {
			cmp := bytes.Compare(m.local[m.idx].key, m.pkey)
			if m.reverse {
				cmp = -cmp
			}
			if cmp == 0 {
				// Shadowed by the cached value.
				m.peeked = false
			}
			useLocal = cmp <= 0
		}

		if !useLocal {
			m.peeked = false
			return m.pkey, m.pval, nil
		}

		it := m.local[m.idx]
		m.idx++
		if it.deleted {
			continue
		}
		return it.key, it.value, nil
	}
}

// peek loads the next parent item unless one is already loaded.
func (m *mergeIterator) peek() error {
	if m.peeked || m.parentDone {
		return nil
	}
	key, value, err := m.parent.Next()
	switch {
	case errors.ErrIteratorDone.Is(err):
		m.parentDone = true
		return nil
	case err != nil:
		return err
	}
	m.peeked = true
	m.pkey, m.pval = key, value
	return nil
}

func (m *mergeIterator) Release() {
	m.parent.Release()
	m.local = nil
}
