package cli

import (
	"fmt"
	"strings"

	"github.com/neoclaw-ai/agentroute/internal/codec"
	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	var showType bool

	cmd := &cobra.Command{
		Use:   "send <agent> <type> <value...>",
		Short: "Deliver one typed message to an agent and print the result",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			msg, err := a.parser.Parse(args[1], strings.Join(args[2:], " "))
			if err != nil {
				return err
			}

			stop, err := a.start(cmd.Context())
			if err != nil {
				return err
			}
			defer stop()

			value, err := a.rt.Send(cmd.Context(), args[0], msg)
			if err != nil {
				return err
			}
			return printValue(cmd, value, showType)
		},
	}

	cmd.Flags().BoolVarP(&showType, "type", "t", false, "Print the result type alongside the value")
	return cmd
}

func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish <type> <value...>",
		Short: "Deliver one typed message to every agent subscribed to its type",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			msg, err := a.parser.Parse(args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			stop, err := a.start(cmd.Context())
			if err != nil {
				return err
			}
			defer stop()

			deliveries, err := a.rt.Publish(cmd.Context(), msg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range deliveries {
				if d.Err != nil {
					if _, err := fmt.Fprintf(out, "%s error: %v\n", d.Agent, d.Err); err != nil {
						return err
					}
					continue
				}
				if _, err := fmt.Fprintf(out, "%s> %s\n", d.Agent, codec.Format(d.Value)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	return cmd
}

func printValue(cmd *cobra.Command, value any, showType bool) error {
	if showType {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), codec.Format(value))
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%v\n", value)
	return err
}
