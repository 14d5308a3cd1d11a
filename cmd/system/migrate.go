package system

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/willsigmon/boppa/internal/schema"
	"github.com/willsigmon/boppa/pkg/database"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the users and contact_messages tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			drv, err := database.NewEntDriver(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer drv.Close()

			ctx, cancel := commandContext(cfg)
			defer cancel()

			fmt.Printf("Running migrations (%s).\n", cfg.Database.Driver)
			if err := database.Migrate(ctx, drv, schema.Tables...); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			fmt.Println("Migrations executed successfully.")
			return nil
		},
	}

	return cmd
}
