package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/drawview/pkg/pipeline"
	"github.com/matzehuels/drawview/pkg/settings"
)

// exportOpts holds the command-line flags for render and export.
type exportOpts struct {
	output  string
	formats string
	refresh bool
	flags   exportFlags
}

// renderCommand creates the render command, which writes the SVG scene.
func (c *CLI) renderCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a diagram to SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = pipeline.FormatSVG
			return c.runExport(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: next to the input)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	opts.flags.register(cmd, false)
	return cmd
}

// exportCommand creates the export command, which rasterizes the diagram.
//
// Settings come from the [export] section of the configuration; flags
// override them for one invocation.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Export a diagram as PNG (or SVG, XML)",
		Long: `Export the first page of a diagram.

The PNG is cropped to the content plus a small margin and scaled from the
96 DPI screen reference to --dpi. Several formats can be written at once:

  drawview export diagram.drawio --format png,svg -o out/diagram`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, or base name for several formats")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", pipeline.FormatPNG, "comma-separated formats: "+strings.Join(pipeline.FormatNames(), ", "))
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	opts.flags.register(cmd, true)
	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, input string, opts exportOpts) error {
	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()

	st, err := opts.flags.apply(cmd, runner.Settings.Load())
	if err != nil {
		return err
	}
	popts := pipeline.Options{
		Formats:     parseFormats(opts.formats),
		Export:      &st,
		Supersample: opts.flags.supersample,
		Refresh:     opts.refresh,
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	raw, err := readInput(cmd, input)
	if err != nil {
		return err
	}
	return c.exportOnce(cmd.Context(), cmd, runner, input, raw, opts.output, popts)
}

// exportOnce runs the pipeline over raw and writes every artifact.
func (c *CLI) exportOnce(ctx context.Context, cmd *cobra.Command, runner *pipeline.Runner, input string, raw []byte, output string, popts pipeline.Options) error {
	prog := newProgress(loggerFromContext(ctx))
	out := cmd.ErrOrStderr()

	result, err := runner.Execute(ctx, raw, popts)
	if err != nil {
		printLoadFailure(out, input, err)
		return err
	}

	paths, err := writeArtifacts(cmd, input, output, popts.Formats, result)
	if err != nil {
		return err
	}

	st := runner.ExportSettings(popts)
	prog.done("Exported " + input)
	printStats(out, result.Stats.Model, result.CacheInfo.DecodeHit)
	if popts.Wants(pipeline.FormatPNG) {
		printDetail(out, "%dx%d px at %d dpi, %s background", result.Frame.Width, result.Frame.Height, st.DPI, describeBackground(st))
	}
	for _, p := range paths {
		printFile(out, p)
	}
	return nil
}

// writeArtifacts writes each requested format and returns the paths.
func writeArtifacts(cmd *cobra.Command, input, output string, formats []string, result *pipeline.Result) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := artifactPath(input, output, format, len(formats) > 1)
		if _, err := writeOutput(cmd, path, result.Artifacts[format]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func describeBackground(st settings.ExportSettings) string {
	if st.Background == settings.BackgroundCustom {
		return settings.FormatColor(st.CustomColor)
	}
	return st.Background.String()
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatPNG}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}
