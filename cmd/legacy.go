/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seaportal/apiserver/config"
	"github.com/seaportal/apiserver/internal/server"
	"github.com/seaportal/apiserver/internal/services"
)

// legacyCmd groups operator commands for the legacy directory migration.
var legacyCmd = &cobra.Command{
	Use:   "legacy",
	Short: "Inspect and migrate users from the legacy directory",
}

var legacyStatusCmd = &cobra.Command{
	Use:   "status <email>",
	Short: "Show the migration status of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigration(cmd, func(svc *services.MigrationService) (any, error) {
			status, err := svc.Status(cmd.Context(), args[0])
			if err != nil {
				return nil, err
			}
			return struct {
				Email string `json:"email"`
				services.MigrationStatus
			}{Email: args[0], MigrationStatus: status}, nil
		})
	},
}

var legacyNeedsCmd = &cobra.Command{
	Use:   "needs <email>",
	Short: "Report whether a user still needs migration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigration(cmd, func(svc *services.MigrationService) (any, error) {
			needs, err := svc.NeedsMigration(cmd.Context(), args[0])
			if err != nil {
				return nil, err
			}
			return map[string]any{"email": args[0], "needsMigration": needs}, nil
		})
	},
}

var legacyMigrateCmd = &cobra.Command{
	Use:   "migrate <email>...",
	Short: fmt.Sprintf("Migrate up to %d users without their passwords", services.MaxBulkMigrate),
	Args:  cobra.RangeArgs(1, services.MaxBulkMigrate),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigration(cmd, func(svc *services.MigrationService) (any, error) {
			return svc.BulkMigrate(cmd.Context(), args)
		})
	},
}

func init() {
	rootCmd.AddCommand(legacyCmd)
	legacyCmd.AddCommand(legacyStatusCmd)
	legacyCmd.AddCommand(legacyNeedsCmd)
	legacyCmd.AddCommand(legacyMigrateCmd)
}

func withMigration(cmd *cobra.Command, run func(*services.MigrationService) (any, error)) error {
	cfg := config.LoadConfig()
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	deps, err := server.WireMigration(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer closeDeps(deps, log)

	out, err := run(deps.Migration)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func closeDeps(deps *server.Dependencies, log *zap.SugaredLogger) {
	if err := deps.Close(); err != nil {
		log.Warnw("close connections", "error", err)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
