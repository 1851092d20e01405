package cli

import (
	"fmt"

	"eventbot/config"
	"eventbot/internal/database"
	"eventbot/pkg/logger"

	"github.com/spf13/cobra"
)

func NewMigrateCommand() *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		Long: `Apply the schema to the configured Postgres database. Running it again
is harmless.

Example:
  eventbot migrate
  eventbot migrate --print > schema.sql`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if printOnly {
				_, err := fmt.Fprint(cmd.OutOrStdout(), database.Schema())
				return err
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			pool, err := database.InitDatabase(&cfg.Database)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			if err := database.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			logger.WithComponent("cli").Info("Schema applied")
			return nil
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "print the schema instead of applying it")

	return cmd
}
