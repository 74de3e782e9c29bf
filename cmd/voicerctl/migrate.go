package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Runs database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()

		if err := app.DBManager.MigrateDatabase(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migrations completed successfully")
		return nil
	},
}
