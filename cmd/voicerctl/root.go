package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"voicero/internal"
	"voicero/internal/websites"
)

const defaultShutdownTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:   "voicerctl",
	Short: "Admin tool for the Voicero conversation analytics engine",
	Long: `voicerctl migrates and seeds the database, refreshes the cached
conversation reports and prints reports or normalized threads for a website.`,
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openApp initializes the application; the returned func releases it.
func openApp() (*internal.Application, func(), error) {
	app, err := internal.NewApp()
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := app.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cleanup error: %v\n", err)
		}
	}
	return app, closeFn, nil
}

// resolveWebsite accepts a numeric id or a domain.
func resolveWebsite(app *internal.Application, ref string) (*websites.Website, error) {
	db := app.DBManager.GetConnection()
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return websites.GetWebsite(db, uint(id))
	}
	return websites.GetWebsiteByDomain(db, ref)
}
