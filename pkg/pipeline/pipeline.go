// Package pipeline runs the decode → parse → render → export chain shared by
// the CLI, the HTTP server and the live view.
//
// # Architecture
//
// The pipeline consists of four strictly sequential stages:
//
//  1. Decode: turn the stored payload into graph-model XML ([codec])
//  2. Parse: build the cell arena and validate it ([model])
//  3. Render: lay the model out as a vector scene ([scene.Renderer])
//  4. Export: write the scene in the requested formats (PNG, SVG, XML)
//
// A failed decode or parse aborts the run; no partial model is returned.
// Decoded XML and SVG documents are cached; PNG images never are.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, raw, pipeline.Options{
//	    Formats: []string{pipeline.FormatPNG},
//	})
//	if err != nil {
//	    return err
//	}
//	png := result.Artifacts[pipeline.FormatPNG]
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/drawview/pkg/cache"
	errs "github.com/matzehuels/drawview/pkg/errors"
	"github.com/matzehuels/drawview/pkg/model"
	"github.com/matzehuels/drawview/pkg/raster"
	"github.com/matzehuels/drawview/pkg/scene"
	"github.com/matzehuels/drawview/pkg/settings"
)

// Format constants for output formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatXML = "xml"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG: true,
	FormatSVG: true,
	FormatXML: true,
}

// DefaultFormats is used when Options.Formats is empty.
var DefaultFormats = []string{FormatPNG}

// Options configures a pipeline run.
type Options struct {
	// Formats lists the artifacts to produce. Duplicates are ignored.
	Formats []string `json:"formats,omitempty"`

	// Export overrides the runner's process-wide settings for this run.
	Export *settings.ExportSettings `json:"-"`

	// Supersample is passed to the rasterizer; 0 means its default.
	Supersample int `json:"supersample,omitempty"`

	// MaxPixels caps the raster size of this run; 0 means raster.MaxPixels.
	MaxPixels int `json:"max_pixels,omitempty"`

	// Refresh bypasses cache reads. Results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Logger overrides the runner's logger.
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ContentHash is the SHA-256 of the raw payload.
	ContentHash string

	// XML is the decoded graph-model XML.
	XML string

	// Model is the parsed diagram.
	Model *model.Model

	// Scene is the rendered vector scene.
	Scene *scene.Scene

	// Frame is the raster geometry, set when PNG was requested.
	Frame raster.Frame

	// Artifacts contains outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	InputBytes int
	XMLBytes   int
	Model      model.Stats
	Elements   int
	DecodeTime time.Duration
	ParseTime  time.Duration
	RenderTime time.Duration
	ExportTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	DecodeHit bool // decoded XML came from cache
	SVGHit    bool // SVG artifact came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// FormatNames returns the supported formats in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// ValidateAndSetDefaults checks formats and export overrides and fills in
// defaults. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(DefaultFormats)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.Formats = dedupe(o.Formats)
	if o.Export != nil {
		if err := o.Export.Validate(); err != nil {
			return err
		}
	}
	if o.Supersample < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "supersample must not be negative, got %d", o.Supersample)
	}
	if o.MaxPixels < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "max pixels must not be negative, got %d", o.MaxPixels)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Wants reports whether format was requested.
func (o *Options) Wants(format string) bool {
	return slices.Contains(o.Formats, format)
}

// ArtifactKeyOpts returns cache key options for an artifact.
func ArtifactKeyOpts(format string, st settings.ExportSettings) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format, Padding: raster.Padding}
	if format == FormatSVG {
		opts.Background = st.Background.String()
		if st.Background == settings.BackgroundCustom {
			opts.Color = settings.FormatColor(st.CustomColor)
		}
	}
	return opts
}

func dedupe(formats []string) []string {
	out := formats[:0:0]
	for _, f := range formats {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
