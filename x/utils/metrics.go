package utils

import (
	"time"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a decorator counting processed transactions per message path and
// outcome, and measuring how long the delivery takes.
type Metrics struct {
	txs      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ barter.Decorator = Metrics{}

// NewMetrics creates a Metrics decorator and registers its collectors.
func NewMetrics(reg prometheus.Registerer) (Metrics, error) {
	m := Metrics{
		txs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barter",
			Name:      "tx_total",
			Help:      "Transactions processed, by message path and outcome.",
		}, []string{"path", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "barter",
			Name:      "tx_duration_seconds",
			Help:      "Time spent delivering a transaction.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
	}
	for _, c := range []prometheus.Collector{m.txs, m.duration} {
		if err := reg.Register(c); err != nil {
			return Metrics{}, errors.Wrap(errors.ErrHuman, err.Error())
		}
	}
	return m, nil
}

// Check only counts. Checks are not timed.
func (m Metrics) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx, next barter.Checker) (*barter.CheckResult, error) {
	res, err := next.Check(ctx, db, tx)
	m.txs.WithLabelValues(barter.GetPath(tx), outcome("check", err)).Inc()
	return res, err
}

func (m Metrics) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx, next barter.Deliverer) (*barter.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	path := barter.GetPath(tx)
	m.duration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	m.txs.WithLabelValues(path, outcome("deliver", err)).Inc()
	return res, err
}

func outcome(phase string, err error) string {
	if err != nil {
		return phase + "_failed"
	}
	return phase + "_ok"
}
