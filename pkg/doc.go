// Package pkg provides the libraries behind drawview, a decoder, renderer and
// raster exporter for Draw.io / diagrams.net documents.
//
// # Overview
//
// Draw.io stores a diagram as XML, either bare, wrapped in an <mxfile>
// element, or wrapped with each page compressed into an opaque blob. drawview
// turns any of these into a cell model, lays that out as a vector scene and
// exports the scene as PNG or SVG.
//
// # Architecture
//
//	stored payload
//	     ↓
//	[codec]     first-success decoding, page unwrapping
//	     ↓
//	[model]     cell arena, parent links, geometry (cycle checked)
//	     ↓
//	[scene]     vector scene at 96 reference units per inch
//	     ↓
//	[raster]    content-cropped PNG at the requested DPI
//
// [pipeline] chains the stages with caching and is shared by the CLI, the
// HTTP host and the live [view].
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, raw, pipeline.Options{
//	    Formats: []string{pipeline.FormatPNG},
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("diagram.png", result.Artifacts[pipeline.FormatPNG], 0644)
//
// # Main Packages
//
// [codec] - ContentDecoder: base64, raw DEFLATE and percent-decoding, tried in
// order until one succeeds; the inverse for writing compressed files.
//
// [model] - Diagram model: cells keyed by id with parent, vertex/edge flags,
// style and geometry. Parsing rejects documents without a graph model and
// parent chains that loop.
//
// [scene] - Reference renderer from model to vector elements, bounds and
// zoom-to-fit, and an SVG writer.
//
// [raster] - Raster exporter: crop to content plus padding, scale by
// dpi/96, fill the background, supersample and encode PNG.
//
// [settings] - Export settings (DPI, background, custom color) and the
// on-screen background policy that live views follow.
//
// ## Infrastructure
//
// [config] - TOML configuration with change notifications.
//
// [watch] - Debounced file change notifications.
//
// [view] - Live document view: generation-counted asynchronous reloads where
// stale results are dropped.
//
// [cache] - Cache backends (null, memory, file, Redis) and key derivation.
//
// [observability] - Hooks for pipeline, cache and server events.
//
// [io] - Reading documents and writing artifacts and summaries.
//
// [errors] - Coded errors shared by every stage.
//
// [buildinfo] - Version information injected at build time.
//
// [codec]: https://pkg.go.dev/github.com/matzehuels/drawview/pkg/codec
// [model]: https://pkg.go.dev/github.com/matzehuels/drawview/pkg/model
// [scene]: https://pkg.go.dev/github.com/matzehuels/drawview/pkg/scene
// [raster]: https://pkg.go.dev/github.com/matzehuels/drawview/pkg/raster
// [settings]: https://pkg.go.dev/github.com/matzehuels/drawview/pkg/settings
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/drawview/pkg/pipeline
// [config]: https://pkg.go.dev/github.com/matzehuels/drawview/pkg/config
// [watch]: https://pkg.go.dev/github.com/matzehuels/drawview/pkg/watch
// [view]: https://pkg.go.dev/github.com/matzehuels/drawview/pkg/view
// [cache]: https://pkg.go.dev/github.com/matzehuels/drawview/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/drawview/pkg/observability
// [io]: https://pkg.go.dev/github.com/matzehuels/drawview/pkg/io
// [errors]: https://pkg.go.dev/github.com/matzehuels/drawview/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/drawview/pkg/buildinfo
package pkg
