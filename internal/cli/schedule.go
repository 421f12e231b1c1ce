package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Inspect and trigger scheduled deliveries",
	}
	cmd.AddCommand(newScheduleListCmd())
	cmd.AddCommand(newScheduleRunCmd())
	return cmd
}

func newScheduleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List enabled scheduled deliveries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			jobs := a.schedulerService().Jobs()
			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				_, err := fmt.Fprintln(out, "No scheduled deliveries.")
				return err
			}
			for _, job := range jobs {
				if _, err := fmt.Fprintf(out, "%s\t%s\t%s %s %s\n", job.ID, job.Cron, job.Agent, job.Type, job.Value); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newScheduleRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <id>",
		Short: "Run one scheduled delivery now and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			stop, err := a.start(cmd.Context())
			if err != nil {
				return err
			}
			defer stop()

			value, err := a.schedulerService().RunNow(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printValue(cmd, value, false)
		},
	}
}
