package accounting

import (
	"github.com/RishalEP/tenx-blockchain/common/errs"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/entity"
	"github.com/RishalEP/tenx-blockchain/modules/tenx/settlement"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const metricsNamespace = "tenx"

// Metrics exposes settlement counters. A nil *Metrics records nothing.
type Metrics struct {
	settlements     *prometheus.CounterVec
	settled         *prometheus.CounterVec
	failedTransfers prometheus.Gauge
	events          *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		settlements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "settlements_total",
			Help:      "Subscribe calls by payment token and result.",
		}, []string{"token", "result"}),
		settled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "settled_amount_total",
			Help:      "Settled gross amount in token base units.",
		}, []string{"token"}),
		failedTransfers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "failed_transfers_amount",
			Help:      "Native amount kept in custody after rejected transfers.",
		}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_total",
			Help:      "Published events by name.",
		}, []string{"event"}),
	}
}

func (m *Metrics) observeSettlement(token common.Address, receipt *settlement.Receipt, err error) {
	if m == nil {
		return
	}
	if err != nil {
		result := string(errs.Kind(err))
		if result == "" {
			result = "error"
		}
		m.settlements.WithLabelValues(token.Hex(), result).Inc()
		return
	}
	m.settlements.WithLabelValues(token.Hex(), "ok").Inc()
	m.settled.WithLabelValues(token.Hex()).Add(toFloat(receipt.Allocation.Gross))
}

func (m *Metrics) setFailedTransfers(amount uint128.Uint128) {
	if m == nil {
		return
	}
	m.failedTransfers.Set(toFloat(amount))
}

func (m *Metrics) observeEvent(name entity.EventName) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(string(name)).Inc()
}

func toFloat(amount uint128.Uint128) float64 {
	return decimal.NewFromBigInt(amount.Big(), 0).InexactFloat64()
}
