package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BridgeMetrics records host and bridge program activity.
type BridgeMetrics struct {
	instructions         *prometheus.CounterVec
	txDuration           *prometheus.HistogramVec
	finalizedHeight      prometheus.Gauge
	pendingMintGroups    prometheus.Gauge
	withdrawalsRequested prometheus.Counter
	withdrawalsProcessed prometheus.Gauge
	feesWithdrawn        prometheus.Gauge
	manualClaims         prometheus.Counter
	mintedSats           prometheus.Counter
}

var (
	bridgeOnce     sync.Once
	bridgeRegistry *BridgeMetrics
)

// Bridge returns the lazily registered bridge metrics.
func Bridge() *BridgeMetrics {
	bridgeOnce.Do(func() {
		bridgeRegistry = &BridgeMetrics{
			instructions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "dogebridge",
				Subsystem: "host",
				Name:      "instructions_total",
				Help:      "Top-level instructions executed segmented by program, instruction and outcome.",
			}, []string{"program", "instruction", "outcome"}),
			txDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "dogebridge",
				Subsystem: "host",
				Name:      "transaction_duration_seconds",
				Help:      "Latency distribution for transaction execution.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"outcome"}),
			finalizedHeight: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "dogebridge",
				Subsystem: "bridge",
				Name:      "finalized_block_height",
				Help:      "Dogecoin block height of the finalized bridge header.",
			}),
			pendingMintGroups: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "dogebridge",
				Subsystem: "bridge",
				Name:      "pending_mint_groups",
				Help:      "Mint groups remaining for the current backlog entry.",
			}),
			withdrawalsRequested: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "dogebridge",
				Subsystem: "bridge",
				Name:      "withdrawals_requested_total",
				Help:      "Withdrawal requests appended to the request tree.",
			}),
			withdrawalsProcessed: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "dogebridge",
				Subsystem: "bridge",
				Name:      "withdrawals_processed_index",
				Help:      "Next processed withdrawal index.",
			}),
			feesWithdrawn: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "dogebridge",
				Subsystem: "bridge",
				Name:      "fees_withdrawn_sats",
				Help:      "Total fees withdrawn by the fee spender.",
			}),
			manualClaims: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "dogebridge",
				Subsystem: "bridge",
				Name:      "manual_deposits_total",
				Help:      "Deposits credited through the manual claim path.",
			}),
			mintedSats: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "dogebridge",
				Subsystem: "bridge",
				Name:      "minted_sats_total",
				Help:      "Token amount minted for deposits.",
			}),
		}
		prometheus.MustRegister(
			bridgeRegistry.instructions,
			bridgeRegistry.txDuration,
			bridgeRegistry.finalizedHeight,
			bridgeRegistry.pendingMintGroups,
			bridgeRegistry.withdrawalsRequested,
			bridgeRegistry.withdrawalsProcessed,
			bridgeRegistry.feesWithdrawn,
			bridgeRegistry.manualClaims,
			bridgeRegistry.mintedSats,
		)
	})
	return bridgeRegistry
}

func (m *BridgeMetrics) ObserveInstruction(program, instruction string, err error) {
	if m == nil {
		return
	}
	if program == "" {
		program = "unknown"
	}
	if instruction == "" {
		instruction = "unknown"
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.instructions.WithLabelValues(program, instruction, outcome).Inc()
}

func (m *BridgeMetrics) ObserveTransaction(d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.txDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *BridgeMetrics) SetFinalizedHeight(height uint32) {
	if m == nil {
		return
	}
	m.finalizedHeight.Set(float64(height))
}

func (m *BridgeMetrics) SetPendingMintGroups(groups uint32) {
	if m == nil {
		return
	}
	m.pendingMintGroups.Set(float64(groups))
}

func (m *BridgeMetrics) IncWithdrawalsRequested() {
	if m == nil {
		return
	}
	m.withdrawalsRequested.Inc()
}

func (m *BridgeMetrics) SetWithdrawalsProcessed(next uint64) {
	if m == nil {
		return
	}
	m.withdrawalsProcessed.Set(float64(next))
}

func (m *BridgeMetrics) SetFeesWithdrawn(total uint64) {
	if m == nil {
		return
	}
	m.feesWithdrawn.Set(float64(total))
}

func (m *BridgeMetrics) IncManualClaims() {
	if m == nil {
		return
	}
	m.manualClaims.Inc()
}

func (m *BridgeMetrics) AddMinted(amount uint64) {
	if m == nil {
		return
	}
	m.mintedSats.Add(float64(amount))
}
