package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"voicero/internal/jobs"
)

func init() {
	rootCmd.AddCommand(refreshCmd)
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuilds the cached conversation report of every website",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()

		job := jobs.NewRefreshJob(app.DBManager, app.Logger, app.Config, app.Reports)
		result, err := job.RunContext(cmd.Context())
		fmt.Printf("Refreshed %d websites, %d failed\n", result.Refreshed, result.Failed)
		return err
	},
}
