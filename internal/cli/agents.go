package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type agentListing struct {
	Name          string   `yaml:"name"`
	Subscriptions []string `yaml:"subscriptions"`
}

func newAgentsCmd() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List enabled agents and the message types they handle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			var listing []agentListing
			for _, name := range a.rt.Agents() {
				agent, ok := a.rt.Agent(name)
				if !ok {
					continue
				}
				subs := agent.Subscriptions()
				types := make([]string, 0, len(subs))
				for _, t := range subs {
					types = append(types, t.String())
				}
				listing = append(listing, agentListing{Name: name, Subscriptions: types})
			}

			out := cmd.OutOrStdout()
			if asYAML {
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(map[string][]agentListing{"agents": listing}); err != nil {
					return fmt.Errorf("encode agents: %w", err)
				}
				return enc.Close()
			}

			if len(listing) == 0 {
				_, err := fmt.Fprintln(out, "No agents enabled.")
				return err
			}
			for _, item := range listing {
				if _, err := fmt.Fprintf(out, "%s\t%s\n", item.Name, strings.Join(item.Subscriptions, ", ")); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the listing as YAML")
	return cmd
}
