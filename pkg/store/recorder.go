package store

import (
	"sync"
	"time"

	"github.com/daviddao/lamportsim/pkg/model"
)

// DefaultBatchSize is the number of buffered observations that triggers a
// write.
const DefaultBatchSize = 1000

// Recorder is a simulation sink that persists observations in batches.
// Observe is safe for concurrent use. Observations still buffered when the
// program exits are lost unless Flush is called, so callers register Flush
// with atexit.
type Recorder struct {
	store     StoreInterface
	batchSize int

	mu      sync.Mutex
	run     *model.Run
	buf     []model.Observation
	written int64
	err     error
}

// NewRecorder returns a Recorder writing to s. A batchSize <= 0 uses
// DefaultBatchSize.
func NewRecorder(s StoreInterface, batchSize int) *Recorder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Recorder{store: s, batchSize: batchSize}
}

// StartRun registers the run the following observations belong to.
func (r *Recorder) StartRun(id string, numProcs int) error {
	run := &model.Run{ID: id, NumProcs: numProcs, StartedAt: time.Now().UTC()}
	if err := r.store.CreateRun(run); err != nil {
		return err
	}
	r.mu.Lock()
	r.run = run
	r.mu.Unlock()
	return nil
}

// FinishRun flushes what is buffered and marks the run complete.
func (r *Recorder) FinishRun(events int64) error {
	if err := r.Flush(); err != nil {
		return err
	}
	r.mu.Lock()
	run := r.run
	r.mu.Unlock()
	if run == nil {
		return nil
	}
	return r.store.FinishRun(run.ID, events, time.Now().UTC())
}

// Observe buffers o, writing the batch once it is full. After a write
// error Observe only buffers; the error is reported by Err, and Flush and
// FinishRun retry the whole buffer.
func (r *Recorder) Observe(o model.Observation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf = append(r.buf, o)
	if r.err == nil && len(r.buf) >= r.batchSize {
		r.flushLocked()
	}
}

// Flush writes every buffered observation.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushLocked()
	return r.err
}

func (r *Recorder) flushLocked() {
	if len(r.buf) == 0 {
		return
	}
	if err := r.store.InsertObservations(r.buf); err != nil {
		if r.err == nil {
			r.err = err
		}
		return
	}
	r.written += int64(len(r.buf))
	r.buf = r.buf[:0]
}

// Err returns the first write error, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Written returns how many observations have reached the store.
func (r *Recorder) Written() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}
