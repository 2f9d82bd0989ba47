// Package apicmder holds the command line of the WorldChef backend.
package apicmder

import (
	"github.com/spf13/cobra"
)

const rootLongDesc string = `WorldChef backend.

Relays chat messages to the configured LLM provider and returns the reply
together with the recipe it recommends, if any.

Configuration is read from the environment (see README). Running the
binary without a command starts the HTTP server.`

// NewRootCmd builds the worldchef command tree. Running it without a
// subcommand starts the server.
func NewRootCmd() *cobra.Command {
	serve := newServeCommander()

	cmd := &cobra.Command{
		Use:           "worldchef",
		Short:         "WorldChef chat relay",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve.run(cmd.Context())
		},
	}

	cmd.AddCommand(serve.command())
	cmd.AddCommand(NewAskCmd())
	return cmd
}
