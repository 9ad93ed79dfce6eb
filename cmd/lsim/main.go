// Command lsim runs Lamport logical clock simulations: a fixed set of
// processes executing scripted local, send and receive events concurrently,
// exchanging clock values over blocking point-to-point channels.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

const version = "1.0.0"

func main() {
	loadDotEnv(".env")

	a := newApp()
	atexit.Register(a.shutdown)

	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lsim: %v\n", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "lsim",
		Short: "Lamport clock simulator",
		Long: `lsim runs a set of logical processes that exchange messages and advance
per-process Lamport clocks. Each process executes a pre-scripted list of
events concurrently with the others:

  I      local step                 ts = ts + 1
  S j    send clock to process j    ts = ts + 1, then push
  R j    receive from process j     ts = max(ts, received) + 1 (blocks)

Schedule format (whitespace separated):
  N  k0 e e ...  k1 e e ...  ...

A Receive that no process ever matches blocks forever.

Environment:
  LSIM_DB      SQLite database path (default: .lamportsim/lamportsim.db)
  LSIM_DEBUG   Set to 1 to enable the debug trace on stderr

Variables are also read from ./.env when present.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.dbPath, "db", a.dbPath, "SQLite database path")
	root.PersistentFlags().BoolVar(&a.debug, "debug", a.debug, "trace every event on stderr")

	root.AddCommand(
		a.newRunCmd(),
		a.newValidateCmd(),
		a.newRunsCmd(),
		a.newLogCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "lsim %s\n", version)
			},
		},
	)
	return root
}

// loadDotEnv preloads environment variables from path. A missing file is
// not an error; variables already set in the environment win.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "lsim: ignoring %s: %v\n", path, err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envBool treats "1", "true", "yes" and "on" (any case) as set.
func envBool(key string) bool {
	switch envOr(key, "") {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	}
	return false
}
