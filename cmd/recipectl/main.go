// Package main provides recipectl, the recipedb administration CLI.
package main

import (
	"fmt"
	"os"

	"github.com/localnerve/recipedb/internal/config"
	"github.com/localnerve/recipedb/internal/database"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// envFile is set by the --env-file flag.
	envFile string

	// db is opened on startup for every command.
	db *gorm.DB
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "recipectl",
	Short: "recipectl administers a recipedb database",
	Long: `recipectl manages users and reference data for a recipedb database.
It reads the same environment configuration as the server.`,
	SilenceUsage:      true,
	PersistentPreRunE: openDatabase,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if db != nil {
			return database.Close(db)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", ".env file to load before reading the environment")

	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(dbCmd)
}

// openDatabase loads configuration and connects.
func openDatabase(cmd *cobra.Command, args []string) error {
	if envFile != "" {
		if err := config.LoadFile(envFile); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err = database.ConnectWithLogger(cfg, logger.Default.LogMode(logger.Warn))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}
