// Package schedule loads and validates simulation schedules.
//
// The text format is a stream of whitespace-separated tokens:
//
//	N
//	k0  e e e ...   (k0 events of process 0)
//	k1  e e ...     (k1 events of process 1)
//	...
//
// where each event is I (local step), S <target> (send to target) or
// R <source> (receive from source). Line breaks carry no meaning.
//
// A schedule whose file name ends in .json is decoded as a model.Schedule
// instead.
//
// Validation lives here, not in the simulator: the simulator trusts its
// input.
package schedule

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/daviddao/lamportsim/pkg/model"
)

// ErrMalformed is wrapped by every parse and validation error.
var ErrMalformed = errors.New("malformed schedule")

// maxPrealloc caps the slice capacity reserved up front for a declared count.
const maxPrealloc = 1024

type tokenizer struct {
	sc  *bufio.Scanner
	pos int
}

func (t *tokenizer) next(what string) (string, error) {
	if !t.sc.Scan() {
		if err := t.sc.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: unexpected end of input, want %s", ErrMalformed, what)
	}
	t.pos++
	return t.sc.Text(), nil
}

func (t *tokenizer) integer(what string) (int, error) {
	tok, err := t.next(what)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: token %d: %s %q is not an integer", ErrMalformed, t.pos, what, tok)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: token %d: %s must not be negative, got %d", ErrMalformed, t.pos, what, n)
	}
	return n, nil
}

// Parse reads a schedule in the token format. It checks syntax only; call
// Validate for peer ranges.
func Parse(r io.Reader) (model.Schedule, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	t := &tokenizer{sc: sc}

	n, err := t.integer("process count")
	if err != nil {
		return model.Schedule{}, err
	}

	// Counts come from the input, so they only bound the loops. Slices grow
	// with the tokens actually read.
	sched := model.Schedule{Procs: make([][]model.Event, 0, min(n, maxPrealloc))}
	for i := 0; i < n; i++ {
		k, err := t.integer(fmt.Sprintf("event count of process %d", i))
		if err != nil {
			return model.Schedule{}, err
		}
		events := make([]model.Event, 0, min(k, maxPrealloc))
		for j := 0; j < k; j++ {
			e, err := parseEvent(t, i)
			if err != nil {
				return model.Schedule{}, err
			}
			events = append(events, e)
		}
		sched.Procs = append(sched.Procs, events)
	}
	return sched, nil
}

func parseEvent(t *tokenizer, pid int) (model.Event, error) {
	tag, err := t.next(fmt.Sprintf("event of process %d", pid))
	if err != nil {
		return model.Event{}, err
	}
	switch tag {
	case "I":
		return model.Local(), nil
	case "S":
		target, err := t.integer("send target")
		if err != nil {
			return model.Event{}, err
		}
		return model.Send(target), nil
	case "R":
		source, err := t.integer("receive source")
		if err != nil {
			return model.Event{}, err
		}
		return model.Receive(source), nil
	default:
		return model.Event{}, fmt.Errorf("%w: token %d: unknown event tag %q for process %d (want I, S or R)",
			ErrMalformed, t.pos, tag, pid)
	}
}

// ParseFile loads a schedule from path, or from stdin when path is "-".
func ParseFile(path string) (model.Schedule, error) {
	if path == "-" {
		return Parse(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return model.Schedule{}, fmt.Errorf("open schedule: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var sched model.Schedule
		if err := json.NewDecoder(f).Decode(&sched); err != nil {
			return model.Schedule{}, fmt.Errorf("%w: decode %s: %v", ErrMalformed, path, err)
		}
		return sched, nil
	}
	return Parse(f)
}

// Validate checks that a schedule can be wired: at least one process, and
// every send or receive names another process in range.
//
// It does not check that sends and receives pair up. An unmatched receive
// blocks its process forever at run time.
func Validate(s model.Schedule) error {
	n := s.NumProcs()
	if n == 0 {
		return fmt.Errorf("%w: no processes", ErrMalformed)
	}
	var errs []error
	for pid, events := range s.Procs {
		for i, e := range events {
			switch e.Kind {
			case model.EventLocal:
				continue
			case model.EventSend, model.EventRecv:
			default:
				errs = append(errs, fmt.Errorf("%w: process %d event %d: unknown kind %q",
					ErrMalformed, pid, i+1, e.Kind))
				continue
			}
			if e.Peer < 0 || e.Peer >= n {
				errs = append(errs, fmt.Errorf("%w: process %d event %d (%s): peer %d out of range [0, %d)",
					ErrMalformed, pid, i+1, e, e.Peer, n))
			} else if e.Peer == pid {
				errs = append(errs, fmt.Errorf("%w: process %d event %d (%s): process cannot address itself",
					ErrMalformed, pid, i+1, e))
			}
		}
	}
	return errors.Join(errs...)
}

// Format writes s in the token format, one process per line.
func Format(w io.Writer, s model.Schedule) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, s.NumProcs())
	for _, events := range s.Procs {
		parts := make([]string, 0, len(events)+1)
		parts = append(parts, strconv.Itoa(len(events)))
		for _, e := range events {
			parts = append(parts, e.String())
		}
		fmt.Fprintln(bw, strings.Join(parts, " "))
	}
	return bw.Flush()
}
