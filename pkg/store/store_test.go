package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/daviddao/lamportsim/pkg/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("New(%q): %v", dbPath, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreateRun(t *testing.T, s *Store, id string, procs int, at time.Time) {
	t.Helper()
	if err := s.CreateRun(&model.Run{ID: id, NumProcs: procs, StartedAt: at}); err != nil {
		t.Fatalf("CreateRun(%s): %v", id, err)
	}
}

// scenarioA is the observation set of a 2-process run: process 0 does a
// local step and sends to 1, process 1 receives from 0.
func scenarioA(runID string) []model.Observation {
	return []model.Observation{
		{RunID: runID, ProcessID: 1, Seq: 1, LamportTS: 3, Kind: model.EventRecv, Peer: 0},
		{RunID: runID, ProcessID: 0, Seq: 1, LamportTS: 1, Kind: model.EventLocal, Peer: model.NoPeer},
		{RunID: runID, ProcessID: 0, Seq: 2, LamportTS: 2, Kind: model.EventSend, Peer: 1},
	}
}

// --- Run tests ---

func TestCreateAndGetRun(t *testing.T) {
	s := newTestStore(t)
	start := time.Now().UTC()
	mustCreateRun(t, s, "r1", 3, start)

	r, err := s.GetRun("r1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if r.ID != "r1" || r.NumProcs != 3 || r.Events != 0 {
		t.Fatalf("got %+v", r)
	}
	if !r.StartedAt.Equal(start) {
		t.Fatalf("started_at: got %v, want %v", r.StartedAt, start)
	}
	if r.Finished() {
		t.Fatal("new run should not be finished")
	}
}

func TestCreateRun_DuplicateID(t *testing.T) {
	s := newTestStore(t)
	mustCreateRun(t, s, "dup", 1, time.Now())
	if err := s.CreateRun(&model.Run{ID: "dup", NumProcs: 1, StartedAt: time.Now()}); err == nil {
		t.Fatal("expected error for duplicate run id")
	}
}

func TestGetRun_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRun("nope")
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("got %v, want ErrRunNotFound", err)
	}
}

func TestFinishRun(t *testing.T) {
	s := newTestStore(t)
	mustCreateRun(t, s, "r1", 2, time.Now())
	end := time.Now().UTC()

	if err := s.FinishRun("r1", 3, end); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	r, err := s.GetRun("r1")
	if err != nil {
		t.Fatal(err)
	}
	if r.Events != 3 || !r.Finished() || !r.FinishedAt.Equal(end) {
		t.Fatalf("got %+v, want events=3 finished at %v", r, end)
	}
}

func TestFinishRun_Unknown(t *testing.T) {
	s := newTestStore(t)
	if err := s.FinishRun("ghost", 1, time.Now()); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("got %v, want ErrRunNotFound", err)
	}
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Now().UTC()
	mustCreateRun(t, s, "old", 1, base.Add(-2*time.Minute))
	mustCreateRun(t, s, "new", 1, base)
	mustCreateRun(t, s, "mid", 1, base.Add(-time.Minute))

	runs, err := s.ListRuns(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	if runs[0].ID != "new" || runs[1].ID != "mid" || runs[2].ID != "old" {
		t.Fatalf("runs not newest first: %v", []string{runs[0].ID, runs[1].ID, runs[2].ID})
	}

	limited, err := s.ListRuns(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Fatalf("limit 2: got %d runs", len(limited))
	}
}

// --- Observation tests ---

func TestInsertAndListObservations_TotalOrder(t *testing.T) {
	s := newTestStore(t)
	mustCreateRun(t, s, "A", 2, time.Now())
	if err := s.InsertObservations(scenarioA("A")); err != nil {
		t.Fatalf("InsertObservations: %v", err)
	}

	obs, err := s.ListObservations("A")
	if err != nil {
		t.Fatal(err)
	}
	if len(obs) != 3 {
		t.Fatalf("got %d observations, want 3", len(obs))
	}
	for i, want := range []int64{1, 2, 3} {
		if obs[i].LamportTS != want {
			t.Fatalf("obs[%d].LamportTS = %d, want %d", i, obs[i].LamportTS, want)
		}
	}
	if obs[2].Kind != model.EventRecv || obs[2].Peer != 0 {
		t.Fatalf("obs[2] = %+v, want recv from 0", obs[2])
	}
}

func TestListObservations_TieBreakByProcess(t *testing.T) {
	s := newTestStore(t)
	mustCreateRun(t, s, "T", 3, time.Now())
	err := s.InsertObservations([]model.Observation{
		{RunID: "T", ProcessID: 2, Seq: 1, LamportTS: 1, Kind: model.EventLocal, Peer: model.NoPeer},
		{RunID: "T", ProcessID: 0, Seq: 1, LamportTS: 1, Kind: model.EventLocal, Peer: model.NoPeer},
		{RunID: "T", ProcessID: 1, Seq: 1, LamportTS: 1, Kind: model.EventLocal, Peer: model.NoPeer},
	})
	if err != nil {
		t.Fatal(err)
	}
	obs, err := s.ListObservations("T")
	if err != nil {
		t.Fatal(err)
	}
	for i, o := range obs {
		if o.ProcessID != i {
			t.Fatalf("obs[%d].ProcessID = %d, want %d", i, o.ProcessID, i)
		}
	}
}

func TestListObservationsForProcess_ProgramOrder(t *testing.T) {
	s := newTestStore(t)
	mustCreateRun(t, s, "A", 2, time.Now())
	if err := s.InsertObservations(scenarioA("A")); err != nil {
		t.Fatal(err)
	}

	p0, err := s.ListObservationsForProcess("A", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(p0) != 2 || p0[0].Seq != 1 || p0[1].Seq != 2 {
		t.Fatalf("process 0: got %+v", p0)
	}
	if p0[0].Kind != model.EventLocal || p0[0].Peer != model.NoPeer {
		t.Fatalf("process 0 first event: got %+v, want local", p0[0])
	}

	none, err := s.ListObservationsForProcess("A", 9)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Fatalf("process 9: got %d observations, want 0", len(none))
	}
}

func TestObservationsIsolatedPerRun(t *testing.T) {
	s := newTestStore(t)
	mustCreateRun(t, s, "A", 2, time.Now())
	mustCreateRun(t, s, "B", 2, time.Now())
	if err := s.InsertObservations(scenarioA("A")); err != nil {
		t.Fatal(err)
	}
	if err := s.InsertObservations(scenarioA("B")[:1]); err != nil {
		t.Fatal(err)
	}
	if n := s.CountObservations("A"); n != 3 {
		t.Fatalf("CountObservations(A) = %d, want 3", n)
	}
	if n := s.CountObservations("B"); n != 1 {
		t.Fatalf("CountObservations(B) = %d, want 1", n)
	}
	if n := s.CountObservations("missing"); n != 0 {
		t.Fatalf("CountObservations(missing) = %d, want 0", n)
	}
}

func TestInsertObservations_DuplicateRollsBackBatch(t *testing.T) {
	s := newTestStore(t)
	mustCreateRun(t, s, "A", 2, time.Now())
	batch := scenarioA("A")
	batch = append(batch, batch[0])

	if err := s.InsertObservations(batch); err == nil {
		t.Fatal("expected error on duplicate (run, process, seq)")
	}
	if n := s.CountObservations("A"); n != 0 {
		t.Fatalf("failed batch left %d rows behind", n)
	}
}

func TestInsertObservations_Empty(t *testing.T) {
	s := newTestStore(t)
	if err := s.InsertObservations(nil); err != nil {
		t.Fatalf("InsertObservations(nil): %v", err)
	}
}

func TestInsertObservations_LargeBatch(t *testing.T) {
	s := newTestStore(t)
	mustCreateRun(t, s, "L", 1, time.Now())
	var batch []model.Observation
	for i := 1; i <= 500; i++ {
		batch = append(batch, model.Observation{
			RunID: "L", ProcessID: 0, Seq: i, LamportTS: int64(i), Kind: model.EventLocal, Peer: model.NoPeer,
		})
	}
	if err := s.InsertObservations(batch); err != nil {
		t.Fatal(err)
	}
	if n := s.CountObservations("L"); n != 500 {
		t.Fatalf("CountObservations = %d, want 500", n)
	}
}
