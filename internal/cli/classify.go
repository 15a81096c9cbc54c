package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/drivingschool/internal/core/config"
	"github.com/vietddude/drivingschool/internal/core/present"
	"github.com/vietddude/drivingschool/internal/core/report"
)

var classifyJSON bool

var classifyCmd = &cobra.Command{
	Use:   "classify [json]",
	Short: "Show the user-facing result for a backend error payload",
	Long: `Classify reads a backend error such as {"message":"JWT expired","code":"42501"}
from the argument or stdin and prints what an end user would see.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runClassify,
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) {
	setupLogging(config.LoggingConfig{Level: "warn"})

	var raw []byte
	if len(args) == 1 {
		raw = []byte(args[0])
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			slog.Error("Failed to read stdin", "error", err)
			os.Exit(1)
		}
		raw = data
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Not JSON: treat the input as an opaque value.
		payload = string(raw)
	}

	// The console sink shows the full record only in debug mode.
	reporter := report.New(report.Config{Debug: true}, report.NewConsoleSink(nil))
	reporter.Start(context.Background())
	res := present.New(reporter).Present(payload, map[string]any{"source": "cli"})
	reporter.Close()

	if err := printResult(cmd.OutOrStdout(), res, classifyJSON); err != nil {
		slog.Error("Failed to print result", "error", err)
		os.Exit(1)
	}
}

func printResult(w io.Writer, res present.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CODE\tSTATUS\tMESSAGE")
	_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\n", res.Code, res.StatusCode, res.Message)
	return tw.Flush()
}
