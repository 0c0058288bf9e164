package descriptor_test

import (
	"sync"
	"testing"

	"sheetwatch/internal/descriptor"
)

func TestUpsertKeepsExistingStatus(t *testing.T) {
	reg := descriptor.NewRegistry()

	if !reg.Upsert("lm317.pdf", "/sheets", descriptor.StatusReady) {
		t.Fatal("expected first upsert to report new")
	}
	if !reg.BeginProcessing("lm317.pdf") {
		t.Fatal("expected claim to succeed")
	}
	if reg.Upsert("lm317.pdf", "/sheets2", descriptor.StatusReady) {
		t.Fatal("expected second upsert to report existing")
	}

	d, ok := reg.Get("lm317.pdf")
	if !ok {
		t.Fatal("descriptor missing")
	}
	if d.Status != descriptor.StatusProcessing {
		t.Fatalf("status = %q, want Processing", d.Status)
	}
	if d.Dir != "/sheets2" {
		t.Fatalf("dir = %q, want refreshed", d.Dir)
	}
}

func TestBeginProcessingClaimsOnce(t *testing.T) {
	reg := descriptor.NewRegistry()
	reg.Upsert("ne555.pdf", "/sheets", descriptor.StatusReady)

	const workers = 16
	var wg sync.WaitGroup
	claims := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claims <- reg.BeginProcessing("ne555.pdf")
		}()
	}
	wg.Wait()
	close(claims)

	won := 0
	for claimed := range claims {
		if claimed {
			won++
		}
	}
	if won != 1 {
		t.Fatalf("claims won = %d, want exactly 1", won)
	}
}

func TestBeginProcessingRejectsNonReady(t *testing.T) {
	reg := descriptor.NewRegistry()
	reg.Upsert("done.pdf", "/sheets", descriptor.StatusFinish)

	if reg.BeginProcessing("done.pdf") {
		t.Fatal("claimed a Finish descriptor")
	}
	if reg.BeginProcessing("absent.pdf") {
		t.Fatal("claimed an absent descriptor")
	}
}

func TestSetStatusAndRemove(t *testing.T) {
	reg := descriptor.NewRegistry()
	reg.Upsert("lm317.pdf", "/sheets", descriptor.StatusReady)

	if !reg.SetStatus("lm317.pdf", descriptor.StatusFinish) {
		t.Fatal("expected status change")
	}
	if reg.SetStatus("lm317.pdf", descriptor.StatusFinish) {
		t.Fatal("expected no-op for same status")
	}
	if reg.SetStatus("absent.pdf", descriptor.StatusReady) {
		t.Fatal("expected false for absent filename")
	}

	if !reg.Remove("lm317.pdf") {
		t.Fatal("expected removal")
	}
	if reg.Remove("lm317.pdf") {
		t.Fatal("expected second removal to report false")
	}
}

func TestSnapshotSorted(t *testing.T) {
	reg := descriptor.NewRegistry()
	reg.Upsert("c.pdf", "/sheets", descriptor.StatusReady)
	reg.Upsert("a.pdf", "/sheets", descriptor.StatusFinish)
	reg.Upsert("b.pdf", "/sheets", descriptor.StatusProcessing)

	snap := reg.Snapshot()
	if len(snap) != 3 || reg.Len() != 3 {
		t.Fatalf("snapshot len = %d", len(snap))
	}
	for i, want := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		if snap[i].Filename != want {
			t.Fatalf("snapshot[%d] = %q, want %q", i, snap[i].Filename, want)
		}
	}
}
