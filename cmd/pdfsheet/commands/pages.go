package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/local/pdfsheet/internal/pagerange"
	"github.com/local/pdfsheet/internal/pdfdoc"
	"github.com/local/pdfsheet/internal/storage"
)

var pagesCmd = &cobra.Command{
	Use:   "pages SRC[@PAGES]...",
	Short: "Show which pages each source keeps without processing anything",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPages,
}

func init() {
	rootCmd.AddCommand(pagesCmd)
}

func runPages(cmd *cobra.Command, args []string) error {
	sources, err := parseSources(args)
	if err != nil {
		return err
	}
	dir, err := os.MkdirTemp(cfg.Pipeline.WorkDir, "pdfsheet-pages-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	st := storage.New()
	out := cmd.OutOrStdout()
	total := 0
	for _, s := range sources {
		local, err := st.Fetch(context.Background(), s.Path, dir)
		if err != nil {
			return fmt.Errorf("%s: %w", s.Path, err)
		}
		n, err := pdfdoc.PageCount(local)
		if err != nil {
			return fmt.Errorf("%s: %w", s.Path, err)
		}
		keep, err := pagerange.Resolve(n, s.RangeSpec)
		if err != nil {
			return fmt.Errorf("%s: %w", s.Label, err)
		}
		total += len(keep)
		fmt.Fprintf(out, "%s: %d of %d pages: %s\n", s.Label, len(keep), n, strings.Join(pdfdoc.Runs(keep), ","))
	}
	fmt.Fprintf(out, "total: %d pages\n", total)
	return nil
}
