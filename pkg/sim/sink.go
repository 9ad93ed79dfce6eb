package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/daviddao/lamportsim/pkg/clock"
	"github.com/daviddao/lamportsim/pkg/model"
)

//go:generate mockgen -destination mock_sink_test.go -package sim -write_package_comment=false github.com/daviddao/lamportsim/pkg/sim Sink

// Sink consumes the observation emitted by every executed event.
// Observe is called concurrently from all process goroutines; within one
// process calls arrive in program order.
type Sink interface {
	Observe(o model.Observation)
}

// Discard drops every observation.
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) Observe(model.Observation) {}

// FormatObservation renders the one-line text form used by WriterSink and
// the CLI, e.g. "process 1 ts=3 R 0".
func FormatObservation(o model.Observation) string {
	return fmt.Sprintf("process %d ts=%d %s", o.ProcessID, o.LamportTS, o.Event())
}

// WriterSink writes one text line per observation. Lines from different
// processes never interleave mid-line. The first write error is kept and
// later observations are dropped.
type WriterSink struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

// NewWriterSink returns a WriterSink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Observe(o model.Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintln(s.w, FormatObservation(o))
}

// Err returns the first write error, if any.
func (s *WriterSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// JSONSink writes one JSON object per line. Like WriterSink it stops at the
// first write error.
type JSONSink struct {
	mu  sync.Mutex
	enc *json.Encoder
	err error
}

// NewJSONSink returns a JSONSink writing to w.
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{enc: json.NewEncoder(w)}
}

func (s *JSONSink) Observe(o model.Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	s.err = s.enc.Encode(o)
}

// Err returns the first write error, if any.
func (s *JSONSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// CollectSink keeps every observation in memory.
type CollectSink struct {
	mu  sync.Mutex
	obs []model.Observation
}

func (s *CollectSink) Observe(o model.Observation) {
	s.mu.Lock()
	s.obs = append(s.obs, o)
	s.mu.Unlock()
}

// Observations returns a copy of everything collected, in arrival order.
func (s *CollectSink) Observations() []model.Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Observation, len(s.obs))
	copy(out, s.obs)
	return out
}

// ForProcess returns the observations of one process in program order.
func (s *CollectSink) ForProcess(pid int) []model.Observation {
	var out []model.Observation
	for _, o := range s.Observations() {
		if o.ProcessID == pid {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Sorted returns the observations in Lamport total order: by timestamp,
// ties broken by process id.
func (s *CollectSink) Sorted() []model.Observation {
	out := s.Observations()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.LamportTS == b.LamportTS && a.ProcessID == b.ProcessID {
			return a.Seq < b.Seq
		}
		return clock.TotalOrderLess(a.LamportTS, a.ProcessID, b.LamportTS, b.ProcessID)
	})
	return out
}

// MultiSink forwards every observation to each of its sinks in order.
type MultiSink []Sink

func (m MultiSink) Observe(o model.Observation) {
	for _, s := range m {
		s.Observe(o)
	}
}
