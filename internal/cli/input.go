package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/drawview/pkg/io"
	"github.com/matzehuels/drawview/pkg/settings"
)

// stdinArg selects standard input as the document.
const stdinArg = "-"

// readInput reads the document named by arg, or standard input for "-".
func readInput(cmd *cobra.Command, arg string) ([]byte, error) {
	if arg == stdinArg {
		return pkgio.ReadFrom(cmd.InOrStdin())
	}
	return pkgio.ReadDocument(arg)
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty or "-". It reports whether a file was written.
func writeOutput(cmd *cobra.Command, path string, data []byte) (bool, error) {
	if path == "" || path == stdinArg {
		_, err := cmd.OutOrStdout().Write(data)
		return false, err
	}
	return true, pkgio.WriteArtifact(path, data)
}

// artifactPath derives the output path for format. An explicit output is
// used as-is for a single format and as a base name otherwise. Without one,
// the artifact lands next to the input.
func artifactPath(input, output, format string, multiple bool) string {
	if output != "" && !multiple {
		return output
	}
	base := output
	if base == "" {
		if input == stdinArg {
			base = "diagram"
		} else {
			base = input
		}
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + "." + format
}

// exportFlags are the settings overrides shared by render, export and watch.
type exportFlags struct {
	dpi         int
	background  string
	color       string
	supersample int
}

func (f *exportFlags) register(cmd *cobra.Command, withDPI bool) {
	if withDPI {
		cmd.Flags().IntVar(&f.dpi, "dpi", settings.DefaultDPI, "export resolution in dots per inch")
		cmd.Flags().IntVar(&f.supersample, "supersample", 0, "oversampling factor (1 disables, 0 uses the default)")
	}
	cmd.Flags().StringVar(&f.background, "background", "", "background: "+strings.Join(settings.BackgroundNames(), ", "))
	cmd.Flags().StringVar(&f.color, "color", "", "custom background color (#rrggbb), implies --background custom")
}

// apply overlays the flags the user set on base.
func (f *exportFlags) apply(cmd *cobra.Command, base settings.ExportSettings) (settings.ExportSettings, error) {
	st := base
	if cmd.Flags().Changed("dpi") {
		st.DPI = f.dpi
	}
	if cmd.Flags().Changed("color") {
		c, err := settings.ParseColor(f.color)
		if err != nil {
			return st, err
		}
		st.CustomColor = c
		st.Background = settings.BackgroundCustom
	}
	if cmd.Flags().Changed("background") {
		bg, err := settings.ParseBackground(f.background)
		if err != nil {
			return st, err
		}
		st.Background = bg
	}
	return st, st.Validate()
}
