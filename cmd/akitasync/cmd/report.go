package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/akitasync/datarecording"
	"github.com/sarchlab/akitasync/tracing"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <trace.sqlite3>",
		Short: "Summarize a trace recorded with run --trace.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return report(cmd.Context(), args[0], cmd.OutOrStdout())
		},
	}
}

func report(ctx context.Context, path string, out io.Writer) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	reader := datarecording.NewReader(path)
	defer reader.Close()

	s, err := tracing.Summarize(ctx, reader)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	fmt.Fprintf(out, "last transition at %.10f\n", s.EndTime)
	fmt.Fprintf(out, "slept %d times for %s\n", s.Sleeps, s.SleepTime)

	for _, p := range s.Positions() {
		fmt.Fprintf(out, "%-18s %d\n", p, s.Transitions[p])
	}

	return nil
}
