package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBridgeMetricsSingleton(t *testing.T) {
	if Bridge() != Bridge() {
		t.Fatalf("expected singleton registry")
	}
}

func TestObserveInstructionOutcomes(t *testing.T) {
	m := Bridge()
	m.ObserveInstruction("bridge", "block_update", nil)
	m.ObserveInstruction("bridge", "block_update", errors.New("boom"))
	m.ObserveInstruction("", "", nil)
	if got := testutil.ToFloat64(m.instructions.WithLabelValues("bridge", "block_update", "error")); got < 1 {
		t.Fatalf("expected error outcome to be recorded, got %v", got)
	}
	if got := testutil.ToFloat64(m.instructions.WithLabelValues("unknown", "unknown", "ok")); got < 1 {
		t.Fatalf("expected unknown labels to be recorded, got %v", got)
	}
	m.ObserveTransaction(time.Millisecond, nil)
	m.SetFinalizedHeight(42)
	if got := testutil.ToFloat64(m.finalizedHeight); got != 42 {
		t.Fatalf("unexpected finalized height gauge %v", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *BridgeMetrics
	m.ObserveInstruction("a", "b", nil)
	m.SetPendingMintGroups(1)
	m.IncWithdrawalsRequested()
	m.AddMinted(5)
}
