package stats

import (
	"testing"
	"time"
)

func TestRenderSnapshotPercentiles(t *testing.T) {
	r := NewRender(time.Hour)
	for _, us := range []int64{100, 200, 300, 400, 500} {
		r.Record("tokens", 10, time.Duration(us)*time.Microsecond)
	}

	snap := r.Snapshot()["tokens"]
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinUs != 100 || snap.MaxUs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinUs, snap.MaxUs)
	}
	if snap.AvgUs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgUs)
	}
	if snap.P50Us != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Us)
	}
	if snap.P95Us != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Us)
	}
	if snap.P99Us != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Us)
	}
	if snap.Bytes != 50 {
		t.Fatalf("expected bytes=50, got %d", snap.Bytes)
	}
}

func TestRenderModesAreSeparate(t *testing.T) {
	r := NewRender(time.Hour)
	r.Record("tokens", 1, time.Millisecond)
	r.Record("ast", 1, 2*time.Millisecond)
	r.Record("ast", 1, 4*time.Millisecond)
	r.RecordError("ast")

	snaps := r.Snapshot()
	if len(snaps) != 2 {
		t.Fatalf("expected 2 modes, got %d", len(snaps))
	}
	if snaps["tokens"].Count != 1 {
		t.Errorf("expected 1 tokens sample, got %d", snaps["tokens"].Count)
	}
	if snaps["ast"].Count != 2 || snaps["ast"].Errors != 1 {
		t.Errorf("expected 2 ast samples and 1 error, got %+v", snaps["ast"])
	}
}

func TestRenderPrunesExpiredSamples(t *testing.T) {
	r := NewRender(time.Minute)
	now := time.Now()
	r.now = func() time.Time { return now }
	r.Record("tokens", 1, time.Millisecond)

	now = now.Add(2 * time.Minute)
	if got := r.Snapshot()["tokens"].Count; got != 0 {
		t.Fatalf("expected count=0 after prune, got %d", got)
	}

	r.Record("tokens", 1, 200*time.Microsecond)
	snap := r.Snapshot()["tokens"]
	if snap.Count != 1 || snap.MinUs != 200 || snap.MaxUs != 200 {
		t.Fatalf("expected a single fresh sample of 200us, got %+v", snap)
	}
	if snap.Bytes != 2 {
		t.Fatalf("expected lifetime bytes=2, got %d", snap.Bytes)
	}
}

func TestRenderClampsNegativeDuration(t *testing.T) {
	r := NewRender(0)
	r.Record("tokens", 0, -time.Second)
	snap := r.Snapshot()["tokens"]
	if snap.Count != 1 || snap.MinUs != 0 {
		t.Fatalf("expected one clamped sample, got %+v", snap)
	}
}
