package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tfea/adapters/postgres"
	"tfea/internal/config"
	"tfea/internal/container"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations to DATABASE_URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}

			c, err := container.New(cfg)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			// Connecting applies pending migrations.
			if err := c.ConnectDatabase(cmd.Context()); err != nil {
				return err
			}

			migrator, err := postgres.NewMigrator(c.DB)
			if err != nil {
				return err
			}
			statuses, err := migrator.Status(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println("Migration Status:")
			fmt.Println("=================")
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied " + s.AppliedAt.Format("2006-01-02 15:04:05")
				}
				fmt.Printf("  %s_%s: %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	}
}
