package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/daviddao/lamportsim/pkg/model"
)

// TestStoreImplementsInterface exercises every method through the interface
// type on a real store.
func TestStoreImplementsInterface(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var iface StoreInterface = s
	defer iface.Close()

	// Runs
	if err := iface.CreateRun(&model.Run{ID: "run", NumProcs: 2, StartedAt: time.Now()}); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if _, err := iface.GetRun("run"); err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	runs, err := iface.ListRuns(10)
	if err != nil || len(runs) != 1 {
		t.Fatalf("ListRuns: got %d runs, err=%v", len(runs), err)
	}

	// Observations
	if err := iface.InsertObservations(scenarioA("run")); err != nil {
		t.Fatalf("InsertObservations: %v", err)
	}
	if obs, err := iface.ListObservations("run"); err != nil || len(obs) != 3 {
		t.Fatalf("ListObservations: got %d, err=%v", len(obs), err)
	}
	if obs, err := iface.ListObservationsForProcess("run", 1); err != nil || len(obs) != 1 {
		t.Fatalf("ListObservationsForProcess: got %d, err=%v", len(obs), err)
	}
	if n := iface.CountObservations("run"); n != 3 {
		t.Fatalf("CountObservations: got %d, want 3", n)
	}

	if err := iface.FinishRun("run", 3, time.Now()); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
}
