package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daviddao/lamportsim/pkg/schedule"
)

func (a *app) newValidateCmd() *cobra.Command {
	var canonical bool
	cmd := &cobra.Command{
		Use:   "validate [schedule|-]",
		Short: "Check a schedule without running it",
		Long: `Parse a schedule and report every event that names an unknown process
or the process itself. Unmatched receives are accepted: they are legal
schedules that never terminate.`,
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
			if canonical {
				return schedule.Format(cmd.OutOrStdout(), sched)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d processes, %d events\n",
				sched.NumProcs(), sched.NumEvents())
			return nil
		},
	}
	cmd.Flags().BoolVar(&canonical, "print", false, "print the schedule in canonical token form")
	return cmd
}
