package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/daviddao/lamportsim/pkg/model"
	"github.com/daviddao/lamportsim/pkg/schedule"
	"github.com/daviddao/lamportsim/pkg/store"
)

const (
	defaultDir = ".lamportsim"
	defaultDB  = defaultDir + "/lamportsim.db"
)

// app holds shared state for all CLI subcommands.
type app struct {
	dbPath string
	debug  bool

	store store.StoreInterface
	rec   *store.Recorder
}

func newApp() *app {
	return &app{
		dbPath: envOr("LSIM_DB", defaultDB),
		debug:  envBool("LSIM_DEBUG"),
	}
}

// openStore opens the database on first use. Creates the .lamportsim/
// directory if using the default DB path.
func (a *app) openStore() (store.StoreInterface, error) {
	if a.store != nil {
		return a.store, nil
	}
	if a.dbPath == defaultDB {
		if err := os.MkdirAll(filepath.Dir(defaultDB), 0755); err != nil {
			return nil, fmt.Errorf("cannot create %s: %w", defaultDir, err)
		}
	}
	s, err := store.New(a.dbPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %q: %w", a.dbPath, err)
	}
	a.store = s
	return s, nil
}

// shutdown flushes a pending recorder before closing the database. It runs
// from atexit, so it must tolerate being called with nothing open.
func (a *app) shutdown() {
	if a.rec != nil {
		if err := a.rec.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "lsim: flush: %v\n", err)
		}
	}
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
}

// logger returns the debug trace logger. Below debug level nothing from the
// simulator is emitted.
func (a *app) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if a.debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadSchedule reads and validates a schedule. "-" reads the command's
// stdin.
func loadSchedule(cmd *cobra.Command, path string) (model.Schedule, error) {
	var (
		sched model.Schedule
		err   error
	)
	if path == "-" {
		sched, err = schedule.Parse(cmd.InOrStdin())
	} else {
		sched, err = schedule.ParseFile(path)
	}
	if err != nil {
		return model.Schedule{}, err
	}
	if err := schedule.Validate(sched); err != nil {
		return model.Schedule{}, err
	}
	return sched, nil
}

// printJSON writes v to w as indented JSON.
func printJSON(w io.Writer, v interface{}) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// printJSONLine writes v to w as a single line of JSON.
func printJSONLine(w io.Writer, v interface{}) {
	_ = json.NewEncoder(w).Encode(v)
}
