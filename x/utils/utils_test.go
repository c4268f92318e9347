package utils

import (
	"context"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/store"
	"github.com/iov-one/barter/weavetest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecovery(t *testing.T) {
	h := weavetest.PanicHandler{Msg: "escrow exploded"}
	r := NewRecovery()

	ctx := context.Background()
	db := store.MemStore()

	assert.Panics(t, func() { h.Check(ctx, db, nil) })
	assert.Panics(t, func() { h.Deliver(ctx, db, nil) })

	_, err := r.Check(ctx, db, nil, h)
	assert.True(t, errors.ErrPanic.Is(err))
	_, err = r.Deliver(ctx, db, nil, h)
	assert.True(t, errors.ErrPanic.Is(err))
}

func TestSavepoint(t *testing.T) {
	// mark is always written before the decorated handler runs
	mark, markValue := []byte("mark"), []byte("set")
	key, value := []byte("escrow"), []byte("open")
	failure := errors.Wrap(errors.ErrState, "handler failed")

	cases := map[string]struct {
		save    Savepoint
		fail    bool
		check   bool
		written [][]byte
		missing [][]byte
	}{
		"inactive savepoint keeps a failed write": {
			save:    NewSavepoint(),
			fail:    true,
			check:   true,
			written: [][]byte{mark, key},
		},
		"check savepoint rolls back a failed check": {
			save:    NewSavepoint().OnCheck(),
			fail:    true,
			check:   true,
			written: [][]byte{mark},
			missing: [][]byte{key},
		},
		"deliver savepoint rolls back a failed deliver": {
			save:    NewSavepoint().OnDeliver(),
			fail:    true,
			written: [][]byte{mark},
			missing: [][]byte{key},
		},
		"both savepoints": {
			save:    NewSavepoint().OnDeliver().OnCheck(),
			fail:    true,
			written: [][]byte{mark},
			missing: [][]byte{key},
		},
		"check savepoint does not guard deliver": {
			save:    NewSavepoint().OnCheck(),
			fail:    true,
			written: [][]byte{mark, key},
		},
		"success is written": {
			save:    NewSavepoint().OnCheck().OnDeliver(),
			written: [][]byte{mark, key},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			require.NoError(t, db.Set(mark, markValue))

			h := &weavetest.WriteHandler{Key: key, Value: value}
			if tc.fail {
				h.Err = failure
			}

			var err error
			if tc.check {
				_, err = tc.save.Check(context.Background(), db, nil, h)
			} else {
				_, err = tc.save.Deliver(context.Background(), db, nil, h)
			}
			assert.Equal(t, tc.fail, err != nil)

			for _, k := range tc.written {
				ok, err := db.Has(k)
				require.NoError(t, err)
				assert.True(t, ok, "missing %s", k)
			}
			for _, k := range tc.missing {
				ok, err := db.Has(k)
				require.NoError(t, err)
				assert.False(t, ok, "unexpected %s", k)
			}
		})
	}
}

func TestActionTagger(t *testing.T) {
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "escrow/take"}}
	db := store.MemStore()
	tagger := NewActionTagger()

	res, err := tagger.Deliver(context.Background(), db, tx, &weavetest.Handler{})
	require.NoError(t, err)
	require.Len(t, res.Tags, 1)
	assert.Equal(t, ActionKey, string(res.Tags[0].Key))
	assert.Equal(t, "escrow/take", string(res.Tags[0].Value))

	failing := &weavetest.Handler{DeliverErr: errors.ErrUnauthorized}
	_, err = tagger.Deliver(context.Background(), db, tx, failing)
	assert.True(t, errors.ErrUnauthorized.Is(err))

	broken := &weavetest.Tx{Err: errors.ErrMsg}
	h := &weavetest.Handler{}
	_, err = tagger.Deliver(context.Background(), db, broken, h)
	assert.True(t, errors.ErrMsg.Is(err))
	assert.Equal(t, 0, h.CallCount())
}

func TestLogging(t *testing.T) {
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "escrow/make"}}
	ctx := barter.WithLogInfo(context.Background(), "test", t.Name())
	db := store.MemStore()
	l := NewLogging()

	_, err := l.Check(ctx, db, tx, &weavetest.Handler{CheckResult: barter.CheckResult{Log: "checked"}})
	assert.NoError(t, err)
	_, err = l.Deliver(ctx, db, tx, &weavetest.Handler{DeliverErr: errors.ErrState})
	assert.True(t, errors.ErrState.Is(err))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.True(t, errors.ErrHuman.Is(err), "collectors registered twice")

	ctx := context.Background()
	db := store.MemStore()
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "escrow/refund"}}

	_, err = m.Check(ctx, db, tx, &weavetest.Handler{})
	require.NoError(t, err)
	_, err = m.Deliver(ctx, db, tx, &weavetest.Handler{})
	require.NoError(t, err)
	_, err = m.Deliver(ctx, db, tx, &weavetest.Handler{DeliverErr: errors.ErrUnauthorized})
	assert.True(t, errors.ErrUnauthorized.Is(err))

	families, err := reg.Gather()
	require.NoError(t, err)
	counts := make(map[string]float64)
	var observed uint64
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch mf.GetName() {
			case "barter_tx_total":
				var outcome string
				for _, l := range metric.GetLabel() {
					if l.GetName() == "outcome" {
						outcome = l.GetValue()
					}
				}
				counts[outcome] += metric.GetCounter().GetValue()
			case "barter_tx_duration_seconds":
				observed += metric.GetHistogram().GetSampleCount()
			}
		}
	}
	assert.Equal(t, map[string]float64{
		"check_ok":       1,
		"deliver_ok":     1,
		"deliver_failed": 1,
	}, counts)
	assert.Equal(t, uint64(2), observed)
}
