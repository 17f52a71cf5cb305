package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkEngine string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that the rasterizer engine is available",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if checkEngine != "" {
			cfg.Raster.Engine = checkEngine
		}
		eng, err := newEngine()
		if err != nil {
			return err
		}
		if err := eng.Check(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is available\n", eng.Name())
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkEngine, "engine", "", "rasterizer engine (gs, mutool, fitz); overrides RASTER_ENGINE")
	rootCmd.AddCommand(checkCmd)
}
