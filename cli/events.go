package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/richinex/concord/events"
)

func eventsCmd() *cobra.Command {
	var (
		dbPath string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent lifecycle events from a SQLite event database",
		Run: func(cmd *cobra.Command, args []string) {
			sink, err := events.OpenSQLiteSink(dbPath)
			if err != nil {
				exitErr(err)
			}
			defer sink.Close()

			records, err := sink.Recent(limit)
			if err != nil {
				exitErr(err)
			}

			out := cmd.OutOrStdout()
			for _, rec := range records {
				ts := time.UnixMilli(rec.TimestampMs).Format(time.RFC3339)
				fmt.Fprintf(out, "%s  %-24s %v\n", ts, rec.Event, rec.Data)
			}
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "concord_events.db", "SQLite event database path")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum events to show")
	return cmd
}
