// Package cli holds the eventbot command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the eventbot root command.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eventbot",
		Short: "Event registration and RSVP chat bot",
		Long: `eventbot runs a Telegram bot that lets admins publish events and lets
users register or answer RSVP cards. Settings come from the environment or a
.env file in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewMigrateCommand())

	return cmd
}
