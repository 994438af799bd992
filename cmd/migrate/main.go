package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/estate/backend/internal/infrastructure/config"
	"github.com/estate/backend/internal/infrastructure/logger"
	"github.com/estate/backend/internal/infrastructure/persistence"
)

// managedTables is the schema this service owns, in creation order
var managedTables = []string{
	"properties",
	"leases",
	"rent_payment_periods",
	"verification_tasks",
	"findings",
	"notifications",
	"channel_deliveries",
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Estate database migration tool",
	}

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(upCmd(), statusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Create or update the schema to match the domain model",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, db, err := connect(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.AutoMigrate(); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			log.Info("Schema migrated", zap.Strings("tables", managedTables))
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which managed tables exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := connect(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			migrator := db.DB.Migrator()
			fmt.Printf("%-24s  %-8s\n", "Table", "Status")
			for _, table := range managedTables {
				status := "Missing"
				if migrator.HasTable(table) {
					status = "Present"
				}
				fmt.Printf("%-24s  %-8s\n", table, status)
			}
			return nil
		},
	}
}

// connect loads configuration and opens the database connection
func connect(cmd *cobra.Command) (*zap.Logger, *persistence.Database, error) {
	logLevel, _ := cmd.Flags().GetString("log-level")

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return log, db, nil
}
