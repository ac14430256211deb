package coordinator

import (
	"testing"
	"time"
)

func TestProgressSignalsFinishedWhenDoneMeetsTotal(t *testing.T) {
	p := NewProgress()
	p.Reset(2)

	p.MadeDomestic(10 * time.Millisecond)
	select {
	case <-p.Finished():
		t.Fatal("did not expect Finished before done == total")
	default:
	}

	p.MadeForeign()
	select {
	case <-p.Finished():
	default:
		t.Fatal("expected Finished once done reaches total")
	}
}

func TestProgressResetZeroesCounters(t *testing.T) {
	p := NewProgress()
	p.Reset(1)
	p.MadeDomestic(5 * time.Millisecond)

	p.Reset(4)
	if p.Done != 0 || p.TotalComputeTime != 0 {
		t.Fatalf("Reset did not zero counters: Done=%d TotalComputeTime=%v", p.Done, p.TotalComputeTime)
	}
	if p.Total != 4 {
		t.Fatalf("Total = %d, want 4", p.Total)
	}
}
