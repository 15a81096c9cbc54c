package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/drivingschool/internal/core/report"
	redisclient "github.com/vietddude/drivingschool/internal/infra/redis"
	"github.com/vietddude/drivingschool/internal/infra/storage/postgres"
)

var reportsLimit int

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List the most recent error reports",
	Run:   runReports,
}

func init() {
	reportsCmd.Flags().IntVar(&reportsLimit, "limit", 20, "number of reports to show")
	rootCmd.AddCommand(reportsCmd)
}

func runReports(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx := context.Background()

	var records []report.Record
	switch {
	case cfg.Database.URL != "":
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer func() {
			_ = db.Close()
		}()
		records, err = postgres.NewErrorReportRepo(db).Recent(ctx, reportsLimit)
		if err != nil {
			slog.Error("Failed to query error reports", "error", err)
			os.Exit(1)
		}
	case cfg.Redis.URL != "":
		rc, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Error("Failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			_ = rc.Close()
		}()
		records, err = redisclient.NewReportStream(rc, cfg.Redis).Recent(ctx, reportsLimit)
		if err != nil {
			slog.Error("Failed to read error stream", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Neither database.url nor redis.url is set")
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "TIME\tCODE\tSTATUS\tOPERATIONAL\tMESSAGE")
	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%t\t%s\n", r.Timestamp, r.Code, r.StatusCode, r.IsOperational, r.Message)
	}
	_ = w.Flush()
}
