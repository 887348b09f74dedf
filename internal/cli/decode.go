package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/drawview/pkg/codec"
	"github.com/matzehuels/drawview/pkg/pipeline"
)

// decodeCommand creates the decode command, which prints the graph-model
// XML of a document's first page.
func (c *CLI) decodeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "decode FILE",
		Short: "Print the decoded graph-model XML of a diagram",
		Long: `Decode a Draw.io document into plain XML.

Compressed pages are inflated and unescaped. Documents that are already
plain XML are printed unchanged. Use "-" to read from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			runner, err := c.newRunner()
			if err != nil {
				return err
			}
			defer runner.Close()

			xmlText, hit, err := runner.DecodeWithCacheInfo(cmd.Context(), raw, pipeline.Options{})
			if err != nil {
				return err
			}
			c.Logger.Debug("decoded", "input", args[0], "bytes", len(xmlText), "cached", hit)

			if !strings.HasSuffix(xmlText, "\n") {
				xmlText += "\n"
			}
			wrote, err := writeOutput(cmd, output, []byte(xmlText))
			if wrote {
				printSuccess(cmd.ErrOrStderr(), "Decoded %s", args[0])
				printFile(cmd.ErrOrStderr(), output)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// compressCommand creates the compress command, the inverse of decode.
func (c *CLI) compressCommand() *cobra.Command {
	var (
		output string
		name   string
	)

	cmd := &cobra.Command{
		Use:   "compress FILE",
		Short: "Wrap a diagram in a compressed single-page Draw.io file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			xmlText, err := pipeline.Decode(cmd.Context(), raw)
			if err != nil {
				return err
			}
			modelXML, err := codec.ModelElement(xmlText)
			if err != nil {
				return err
			}
			doc, err := codec.Compress(modelXML, codec.WrapOptions{Name: name})
			if err != nil {
				return err
			}

			wrote, err := writeOutput(cmd, output, []byte(doc))
			if wrote {
				printSuccess(cmd.ErrOrStderr(), "Compressed %s (%d → %d bytes)", args[0], len(raw), len(doc))
				printFile(cmd.ErrOrStderr(), output)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&name, "name", "", "page name (default \"Page-1\")")
	return cmd
}
