package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/local/pdfsheet/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status RUN_ID",
	Short: "Show the mirrored status of a run (requires REDIS_URL)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Status.RedisURL == "" {
			return errors.New("status mirror is not configured: set REDIS_URL")
		}
		rs, err := store.NewRedisStatus(cfg.Status.RedisURL, cfg.Status.TTL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer rs.Close()
		return printStatus(cmd.Context(), cmd.OutOrStdout(), rs, args[0])
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusGetter interface {
	Get(ctx context.Context, runID string) (store.Status, bool, error)
}

func printStatus(ctx context.Context, w io.Writer, src statusGetter, runID string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	st, ok, err := src.Get(ctx, runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("run %s: no status recorded (unknown id or expired)", runID)
	}
	fmt.Fprintf(w, "run:      %s\n", runID)
	fmt.Fprintf(w, "phase:    %s\n", st.Phase)
	fmt.Fprintf(w, "progress: %d/%d\n", st.Current, st.Total)
	fmt.Fprintf(w, "message:  %s\n", st.Message)
	if st.Output != "" {
		fmt.Fprintf(w, "output:   %s\n", st.Output)
	}
	if st.Start != nil {
		end := time.Now()
		if st.End != nil {
			end = *st.End
		}
		fmt.Fprintf(w, "elapsed:  %s\n", end.Sub(*st.Start).Round(time.Second))
	}
	keys := make([]string, 0, len(st.Metadata))
	for k := range st.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%-9s %v\n", k+":", st.Metadata[k])
	}
	return nil
}
