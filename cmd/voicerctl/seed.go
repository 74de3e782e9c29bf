package main

import (
	"github.com/spf13/cobra"

	"voicero/internal/seeder"
)

func init() {
	seedCmd.Flags().Int("conversations", 300, "number of conversations to generate")
	seedCmd.Flags().String("domain", "", "existing domain to seed (seeds the demo websites if empty)")
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seeds the database with demo stores and conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("conversations")
		domain, _ := cmd.Flags().GetString("domain")

		app, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()

		if err := app.DBManager.MigrateDatabase(); err != nil {
			return err
		}

		se := seeder.NewSeeder(app.DBManager, app.Logger, count)
		if domain != "" {
			return se.SeedDomain(cmd.Context(), domain)
		}
		return se.Run(cmd.Context())
	},
}
