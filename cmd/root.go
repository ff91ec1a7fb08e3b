/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seaportal/apiserver/config"
	"github.com/seaportal/apiserver/internal/logger"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Maritime portal authentication and legacy migration server",
	Long: `Maritime portal authentication and legacy migration server.

Logins are checked against the local database first and fall back to the
legacy directory, migrating eligible users on their first login.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) (*zap.SugaredLogger, error) {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	return log.Sugar(), nil
}
