// Package cli wires Cobra subcommands to application dependencies; it is a thin controller with no business logic.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/neoclaw-ai/agentroute/internal/bootstrap"
	"github.com/neoclaw-ai/agentroute/internal/config"
	"github.com/neoclaw-ai/agentroute/internal/logging"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command and registers all subcommands.
func NewRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "agentroute",
		Short: "Type-routed agent runtime",
		// Let main handle fatal error rendering through structured logs.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logging.SetLevel(slog.LevelWarn)

			// config and version only print; they never bootstrap the home dir.
			switch cmd.Name() {
			case "config", "version":
				return nil
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			level, err := logging.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			if verbose && level > slog.LevelInfo {
				level = slog.LevelInfo
			}
			logging.SetLevel(level)

			created, err := bootstrap.Initialize(cfg)
			if err != nil {
				return err
			}
			if created {
				if _, err := fmt.Fprintf(
					cmd.ErrOrStderr(),
					"First run setup complete.\nEdit config file: %s\n",
					cfg.ConfigPath(),
				); err != nil {
					return err
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to `agentroute repl` when no subcommand is provided.
			replCmd, _, err := cmd.Find([]string{"repl"})
			if err != nil {
				return err
			}
			replCmd.SetContext(cmd.Context())
			return replCmd.RunE(replCmd, args)
		},
	}

	root.AddCommand(newConfigCmd())
	root.AddCommand(newStartCmd())
	root.AddCommand(newSendCmd())
	root.AddCommand(newPublishCmd())
	root.AddCommand(newReplCmd())
	root.AddCommand(newAgentsCmd())
	root.AddCommand(newScheduleCmd())
	root.AddCommand(newVersionCmd())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging (info level)")

	return root
}
