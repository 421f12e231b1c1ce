package cli

import (
	"github.com/neoclaw-ai/agentroute/internal/channels"
	"github.com/neoclaw-ai/agentroute/internal/commands"
	"github.com/spf13/cobra"
)

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session for sending messages to agents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			stop, err := a.start(cmd.Context())
			if err != nil {
				return err
			}
			defer stop()

			router := commands.Router{
				Commands: commands.New(a.rt, a.parser.Kinds()),
				Next:     channels.RuntimeHandler{Runtime: a.rt, Parser: a.parser},
			}
			listener := channels.NewCLI(cmd.InOrStdin(), cmd.OutOrStdout(), a.cfg.HistoryPath())
			return listener.Listen(cmd.Context(), router)
		},
	}
}
