package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"voicero/internal/timeframe"
)

func init() {
	for _, c := range []*cobra.Command{reportCmd, exportThreadsCmd} {
		c.Flags().String("range", "", "range label: today, yesterday, last_7_days, last_30_days, last_90_days")
		c.Flags().String("from", "", "custom start date (YYYY-MM-DD)")
		c.Flags().String("to", "", "custom end date (YYYY-MM-DD)")
		c.Flags().String("tz", "UTC", "timezone of the range")
		rootCmd.AddCommand(c)
	}
}

var reportCmd = &cobra.Command{
	Use:   "report <website-id|domain>",
	Short: "Prints the conversation report of a website as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tf, err := timeFrameFromFlags(cmd)
		if err != nil {
			return err
		}

		app, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()

		website, err := resolveWebsite(app, args[0])
		if err != nil {
			return err
		}

		report, err := app.Reports.Build(cmd.Context(), website.ID, tf)
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

var exportThreadsCmd = &cobra.Command{
	Use:   "export-threads <website-id|domain>",
	Short: "Prints the summarizer input (normalized threads and stats) of a website",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tf, err := timeFrameFromFlags(cmd)
		if err != nil {
			return err
		}

		app, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()

		website, err := resolveWebsite(app, args[0])
		if err != nil {
			return err
		}

		doc, err := app.Reports.SummaryDocument(cmd.Context(), website.ID, tf)
		if err != nil {
			return err
		}
		return printJSON(doc)
	},
}

func timeFrameFromFlags(cmd *cobra.Command) (*timeframe.TimeFrame, error) {
	var params timeframe.TimeFrameParserParams
	params.Range, _ = cmd.Flags().GetString("range")
	params.FromDate, _ = cmd.Flags().GetString("from")
	params.ToDate, _ = cmd.Flags().GetString("to")
	params.Tz, _ = cmd.Flags().GetString("tz")
	return timeframe.NewTimeFrameParser().ParseTimeFrame(params)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
