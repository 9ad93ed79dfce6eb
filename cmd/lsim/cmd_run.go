package main

import (
	"fmt"

	"github.com/rs/xid"
	"github.com/spf13/cobra"

	"github.com/daviddao/lamportsim/pkg/sim"
	"github.com/daviddao/lamportsim/pkg/store"
)

func (a *app) newRunCmd() *cobra.Command {
	var (
		jsonOut    bool
		totalOrder bool
		record     bool
		batch      int
	)
	cmd := &cobra.Command{
		Use:   "run [schedule|-]",
		Short: "Run a schedule and print every observation",
		Long: `Run every process of a schedule concurrently until all scripts are
exhausted. Observations are printed as they happen unless --total-order is
given, in which case they are printed once the run has finished, sorted by
Lamport timestamp with ties broken by process id.

Reads the schedule from stdin when no file is given or the file is "-".
Files ending in .json are decoded as JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			sched, err := loadSchedule(cmd, path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var (
				sinks   sim.MultiSink
				collect *sim.CollectSink
				stream  interface{ Err() error }
			)
			switch {
			case totalOrder:
				collect = &sim.CollectSink{}
				sinks = append(sinks, collect)
			case jsonOut:
				js := sim.NewJSONSink(out)
				sinks, stream = append(sinks, js), js
			default:
				ws := sim.NewWriterSink(out)
				sinks, stream = append(sinks, ws), ws
			}

			runID := xid.New().String()
			if record {
				st, err := a.openStore()
				if err != nil {
					return err
				}
				a.rec = store.NewRecorder(st, batch)
				if err := a.rec.StartRun(runID, sched.NumProcs()); err != nil {
					return fmt.Errorf("record: %w", err)
				}
				sinks = append(sinks, a.rec)
			}

			s := sim.New(sched, sinks,
				sim.WithRunID(runID),
				sim.WithLogger(a.logger(cmd.ErrOrStderr())),
			)
			s.Run()

			if collect != nil {
				for _, o := range collect.Sorted() {
					if jsonOut {
						printJSONLine(out, o)
					} else {
						fmt.Fprintln(out, sim.FormatObservation(o))
					}
				}
			}

			if record {
				if err := a.rec.FinishRun(s.Events()); err != nil {
					return fmt.Errorf("record: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "recorded run %s (%d events, %d processes)\n",
					runID, s.Events(), sched.NumProcs())
			}
			if stream != nil {
				if err := stream.Err(); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "one JSON object per observation")
	cmd.Flags().BoolVar(&totalOrder, "total-order", false, "print in Lamport total order after the run")
	cmd.Flags().BoolVar(&record, "record", false, "persist the run to the database")
	cmd.Flags().IntVar(&batch, "batch", store.DefaultBatchSize, "observations per database write")
	return cmd
}
