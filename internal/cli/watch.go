package cli

import (
	"context"
	"errors"
	"slices"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/drawview/pkg/config"
	"github.com/matzehuels/drawview/pkg/pipeline"
	"github.com/matzehuels/drawview/pkg/settings"
	"github.com/matzehuels/drawview/pkg/view"
	"github.com/matzehuels/drawview/pkg/watch"
)

// watchCommand creates the watch command, which keeps a live view of one
// document and re-exports it after every change.
//
// Edits to the document start a new load; a load that is overtaken by a newer
// one is discarded. Edits to the [export] and [view] sections of the
// configuration file are applied without a restart.
func (c *CLI) watchCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Re-export a diagram whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == stdinArg {
				return errors.New("watch needs a file, not standard input")
			}
			return c.runWatch(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, or base name for several formats")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", pipeline.FormatPNG, "comma-separated formats")
	opts.flags.register(cmd, true)
	return cmd
}

func (c *CLI) runWatch(cmd *cobra.Command, path string, opts exportOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	out := cmd.ErrOrStderr()

	formats := parseFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}
	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()

	presentation, err := c.config.View.Presentation()
	if err != nil {
		return err
	}
	policy := settings.NewPolicy()
	policy.Set(presentation)

	var exported uint64
	v := view.New(view.File(path), view.Options{
		Runner: runner,
		Policy: policy,
		Logger: logger,
		OnUpdate: func(st view.State) {
			if st.Err != nil {
				printLoadFailure(out, path, st.Err)
				return
			}
			if !st.Ready() || st.Generation == exported {
				fill, ok := st.Presentation.Fill()
				logger.Debug("presentation changed", "background", st.Presentation.Mode, "fill", fill, "visible", ok)
				return
			}
			exported = st.Generation
			c.exportView(ctx, cmd, runner, path, opts, formats, st)
		},
	})
	defer v.Close()

	fw, err := watch.New(path, watch.WithLogger(logger))
	if err != nil {
		return err
	}
	defer fw.Close()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return fw.Run(ctx, func(ev watch.Event) {
			if ev.Removed {
				logger.Warn("document removed, waiting for it to reappear", "path", path)
				return
			}
			v.Reload(ctx)
		})
	})

	if cw := c.configWatcher(); cw != nil {
		defer cw.Close()
		unsubscribe := cw.Subscribe(func(ev config.Event) {
			if ev.Err != nil {
				return
			}
			if err := config.Apply(ev.Config, runner.Settings, policy); err != nil {
				logger.Warn("config not applied", "err", err)
				return
			}
			if slices.Contains(ev.Changed, config.SectionExport) {
				v.Reload(ctx)
			}
		})
		defer unsubscribe()
		g.Go(func() error { return cw.Run(ctx) })
	}

	v.Reload(ctx)
	printInfo(out, "Watching %s (Ctrl+C to stop)", path)

	err = g.Wait()
	v.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// exportView writes the artifacts of a freshly loaded view state.
func (c *CLI) exportView(ctx context.Context, cmd *cobra.Command, runner *pipeline.Runner, path string, opts exportOpts, formats []string, st view.State) {
	logger := loggerFromContext(ctx)
	out := cmd.ErrOrStderr()
	prog := newProgress(logger)

	es, err := opts.flags.apply(cmd, runner.Settings.Load())
	if err != nil {
		printError(out, "%v", err)
		return
	}
	popts := pipeline.Options{
		Formats:     formats,
		Export:      &es,
		Supersample: opts.flags.supersample,
		Logger:      logger,
	}
	if err := runner.ExportResult(ctx, st.Result, popts); err != nil {
		printError(out, "Export failed: %v", err)
		return
	}
	paths, err := writeArtifacts(cmd, path, opts.output, formats, st.Result)
	if err != nil {
		printError(out, "Write failed: %v", err)
		return
	}
	prog.done("Exported generation " + strconv.FormatUint(st.Generation, 10))
	for _, p := range paths {
		printFile(out, p)
	}
}

// configWatcher watches the configuration file, or returns nil when there
// is nothing to watch.
func (c *CLI) configWatcher() *config.Watcher {
	if c.configPath == "" {
		return nil
	}
	cw, err := config.NewWatcher(c.configPath, c.config, c.Logger)
	if err != nil {
		c.Logger.Debug("not watching config", "path", c.configPath, "err", err)
		return nil
	}
	return cw
}
