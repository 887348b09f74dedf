package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/drawview/pkg/codec"
	pkgio "github.com/matzehuels/drawview/pkg/io"
	"github.com/matzehuels/drawview/pkg/pipeline"
)

// parseCommand creates the parse command, which summarizes a diagram model.
func (c *CLI) parseCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Summarize the cells of a diagram",
		Args:  cobra.ExactArgs(1),
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

			result, err := runner.Load(cmd.Context(), raw, pipeline.Options{})
			if err != nil {
				printLoadFailure(cmd.ErrOrStderr(), args[0], err)
				return err
			}

			// Page metadata only exists in the wrapper, which decoding strips
			// from compressed documents. Non-XML input has no pages to list.
			pages, _ := codec.Pages(string(raw))

			out := cmd.OutOrStdout()
			if asJSON {
				return pkgio.WriteSummary(pkgio.NewSummary(result.Model, pages), out)
			}

			fmt.Fprintln(out, StyleTitle.Render(args[0]))
			printStats(out, result.Stats.Model, result.CacheInfo.DecodeHit)
			fmt.Fprintln(out)
			printKeyValue(out, "layers", fmt.Sprint(result.Stats.Model.Layers))
			printKeyValue(out, "depth", fmt.Sprint(result.Stats.Model.Depth))
			printKeyValue(out, "xml", fmt.Sprintf("%d bytes", result.Stats.XMLBytes))
			if len(pages) > 0 {
				names := make([]string, len(pages))
				for i, p := range pages {
					names[i] = p.Name
				}
				printKeyValue(out, "pages", strings.Join(names, ", "))
				if len(pages) > 1 {
					printDetail(out, "only the first page is rendered")
				}
			}
			fmt.Fprintln(out)
			printNextStep(out, "Export it", "drawview export "+args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full model as JSON")
	return cmd
}
