// evaluate scores a model artifact against a labeled dataset and writes
// metrics_summary.md and confusion_matrix.png to the reports directory.
//
// Usage:
//
//	evaluate [--data=issues.csv] [--model-dir=app/model | --model=<location>]
//	         [--reports-dir=reports] [--table=<name> --limit=<n>] [--history-dsn=<dsn> [--recent=<n>]]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"bugtriage/classifier"
	"bugtriage/config"
	"bugtriage/logging"
	"bugtriage/services"
)

func main() {
	cfg, err := config.LoadEvaluate()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.Red.Sprint(err))
		os.Exit(1)
	}
	logging.Setup(os.Stderr, "evaluate", cfg.Level, cfg.Format)

	if err := newEvaluateCmd(&cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newEvaluateCmd(cfg *config.Evaluate) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "evaluate",
		Short:         "Score a bug classifier against a labeled dataset",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runEvaluate(cmd, cfg)
			if err != nil {
				printFailure(cmd.ErrOrStderr(), err)
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.DataPath, "data", cfg.DataPath, "Dataset location: CSV path, s3:// or gs:// URL, or database DSN")
	f.StringVar(&cfg.ModelPath, "model", cfg.ModelPath, "Explicit model location (file, s3://, gs:// or http(s) model server)")
	f.StringVar(&cfg.ModelDir, "model-dir", cfg.ModelDir, "Directory searched for the first model artifact")
	f.StringVar(&cfg.ReportsDir, "reports-dir", cfg.ReportsDir, "Directory receiving the report files")
	f.StringVar(&cfg.Table, "table", cfg.Table, "Table or collection for database sources")
	f.IntVar(&cfg.Limit, "limit", cfg.Limit, "Maximum rows read from database sources")
	f.StringVar(&cfg.HistoryDSN, "history-dsn", cfg.HistoryDSN, "postgres:// or mysql:// DSN recording each run")
	f.IntVar(&cfg.Recent, "recent", cfg.Recent, "After recording, list this many recent runs from the history")
	return cmd
}

func runEvaluate(cmd *cobra.Command, cfg *config.Evaluate) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	router := cfg.Storage.Router()

	svc := services.NewEvaluationService(
		classifier.Loader{Fetcher: router, HTTPClient: http.DefaultClient},
		services.NewDataService(router),
	)
	svc.Observer = &consoleObserver{out: out}

	var lister services.RunLister
	if cfg.HistoryDSN != "" {
		history, err := services.OpenHistory(cfg.HistoryDSN)
		if err != nil {
			return err
		}
		defer history.Close()
		svc.History = history
		lister = history
	}

	result, err := svc.Run(cmd.Context(), services.EvaluationOptions{
		ModelPath:  cfg.ModelPath,
		ModelDir:   cfg.ModelDir,
		DataPath:   cfg.DataPath,
		ReportsDir: cfg.ReportsDir,
		Table:      cfg.Table,
		Limit:      cfg.Limit,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	result.Report.WriteTable(out)
	if result.Run != nil {
		fmt.Fprintf(out, "Recorded run %s\n", result.Run.ID)
	}
	if lister != nil && cfg.Recent > 0 {
		if err := printRecent(cmd.Context(), out, lister, cfg.Recent); err != nil {
			return err
		}
	}
	fmt.Fprintln(out, color.Green.Sprint("\nDone. Link these in your README:"))
	fmt.Fprintf(out, " - %s\n - %s\n", result.MetricsPath, result.MatrixPath)
	return nil
}

func printRecent(ctx context.Context, out io.Writer, lister services.RunLister, n int) error {
	runs, err := lister.Recent(ctx, n)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nLast %d runs:\n", len(runs))
	services.WriteRuns(out, runs)
	return nil
}

func printFailure(w io.Writer, err error) {
	var inferErr *services.ColumnInferenceError
	if !errors.As(err, &inferErr) {
		fmt.Fprintln(w, color.Red.Sprint(err))
		return
	}
	fmt.Fprintln(w, color.Red.Sprint("Could not infer columns."))
	fmt.Fprintf(w, "   Found columns: [%s]\n", strings.Join(inferErr.Available, ", "))
	fmt.Fprintln(w, "   Tips:")
	for _, tip := range inferErr.Tips() {
		fmt.Fprintf(w, "   - %s\n", tip)
	}
}

type consoleObserver struct {
	out io.Writer
}

func (o *consoleObserver) ModelLocated(location string) {
	fmt.Fprintf(o.out, "Using model: %s\n", color.Cyan.Sprint(location))
}

func (o *consoleObserver) DataLoaded(ds *services.Dataset) {
	fmt.Fprintf(o.out, "Loaded %d rows from %s\n", ds.Rows(), ds.Source)
}

func (o *consoleObserver) ColumnsInferred(cols services.Columns) {
	fmt.Fprintf(o.out, "Using text column:  %s\n", cols.Text)
	fmt.Fprintf(o.out, "Using label column: %s\n", cols.Label)
}

func (o *consoleObserver) ArtifactLoaded(artifact *classifier.Artifact) {
	fmt.Fprintf(o.out, "Model format %s, digest %s\n", artifact.Format, artifact.Digest)
}

func (o *consoleObserver) ReportWritten(path string) {
	fmt.Fprintln(o.out, color.Green.Sprintf("Saved %s", path))
}
