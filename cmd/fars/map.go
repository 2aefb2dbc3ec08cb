package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/fars-data/internal/adapter/mapplot"
	"github.com/couchcryptid/fars-data/internal/domain"
)

func newMapCmd() *cobra.Command {
	var (
		stateArg   string
		yearArg    string
		out        string
		format     string
		boundaries string
	)
	cmd := &cobra.Command{
		Use:   "map --state CODE --year YEAR",
		Short: "Plot the crash locations of one state in one year",
		Long: `Plot the crash locations of one state in one year.

The image format is taken from --format, then from the --out extension, then
from PLOT_FORMAT. Crashes with an unknown latitude or longitude are left off
the plot and do not affect the axis ranges.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := domain.ParseState(stateArg)
			if err != nil {
				return err
			}
			year, err := domain.ParseYear(yearArg)
			if err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if boundaries != "" {
				a.cfg.BoundaryFile = boundaries
			}

			format = resolveFormat(format, out, a.cfg.PlotFormat)
			if !mapplot.ValidFormat(format) {
				return fmt.Errorf("unsupported format %q: want png, svg or pdf", format)
			}
			if out == "" {
				out = fmt.Sprintf("state_%d_%d.%s", state, year, format)
			}

			newRenderer, err := a.renderers()
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			m, err := a.pipeline.MapState(cmd.Context(), state, year, newRenderer(&buf, format))
			if err != nil {
				return err
			}
			if m.Empty() {
				fmt.Fprintf(cmd.ErrOrStderr(), "no accidents to plot for state %d in %d\n", state, year)
				return nil
			}

			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil { //nolint:gosec // image output
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d of %d crashes plotted)\n", out, len(m.Points()), len(m.Sites))
			return nil
		},
	}
	cmd.Flags().StringVar(&stateArg, "state", "", "state code (FIPS)")
	cmd.Flags().StringVar(&yearArg, "year", "", "data year")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default state_<code>_<year>.<format>)")
	cmd.Flags().StringVar(&format, "format", "", "image format: png, svg or pdf")
	cmd.Flags().StringVar(&boundaries, "boundaries", "", "GeoJSON state boundary file (overrides FARS_BOUNDARY_FILE)")
	_ = cmd.MarkFlagRequired("state")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func resolveFormat(flag, out, fallback string) string {
	if flag != "" {
		return strings.ToLower(flag)
	}
	if ext := strings.TrimPrefix(filepath.Ext(out), "."); ext != "" {
		return strings.ToLower(ext)
	}
	return fallback
}
