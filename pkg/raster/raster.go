// Package raster exports rendered scenes as PNG images.
//
// Export frames the scene's content box with a fixed padding, scales it from
// the 96 DPI reference resolution to the requested DPI and composites the
// scene over the configured background:
//
//	crop   = bounds expanded by Padding on every side
//	scale  = dpi / 96
//	width  = ceil(crop.W * scale)
//	height = ceil(crop.H * scale)
//
// The crop's top-left corner maps to pixel (0,0). Elements are painted into
// a transparent layer at Supersample times the target resolution, then
// resampled onto the background with Catmull-Rom filtering.
package raster

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"

	errs "github.com/matzehuels/drawview/pkg/errors"
	"github.com/matzehuels/drawview/pkg/scene"
	"github.com/matzehuels/drawview/pkg/settings"
)

const (
	// Padding is the margin added around the content box, in scene units.
	Padding = 10

	// MaxPixels bounds width*height of an exported image.
	MaxPixels = 100_000_000

	// DefaultSupersample is the oversampling factor used when none is set.
	DefaultSupersample = 2
)

// Frame is the pixel geometry of an export.
type Frame struct {
	Crop   scene.Rect // scene region mapped onto the image
	Scale  float64    // pixels per scene unit
	Width  int
	Height int
}

// Plan computes the export frame for a content box at dpi.
//
// An empty box fails with EXPORT_EMPTY_CONTENT; a frame narrower than one
// pixel or larger than MaxPixels fails with EXPORT_DEGENERATE_SIZE.
func Plan(bounds scene.Rect, dpi int) (Frame, error) {
	return PlanWithin(bounds, dpi, MaxPixels)
}

// PlanWithin is [Plan] with a pixel budget of limit instead of MaxPixels.
// A limit of zero or less means MaxPixels.
func PlanWithin(bounds scene.Rect, dpi, limit int) (Frame, error) {
	if limit <= 0 {
		limit = MaxPixels
	}
	if !(bounds.W > 0 && bounds.H > 0) {
		return Frame{}, errs.New(errs.ErrCodeExportEmptyContent,
			"diagram has no content (bounds %gx%g)", bounds.W, bounds.H)
	}

	crop := bounds.Expand(Padding)
	scale := float64(dpi) / scene.ReferenceDPI
	w := math.Ceil(crop.W * scale)
	h := math.Ceil(crop.H * scale)

	if !(w >= 1 && h >= 1) {
		return Frame{}, errs.New(errs.ErrCodeExportDegenerateSize,
			"image would be %gx%g pixels at %d dpi", w, h, dpi)
	}
	if w*h > float64(limit) {
		return Frame{}, errs.New(errs.ErrCodeExportDegenerateSize,
			"image would be %.0fx%.0f pixels at %d dpi (max %d pixels)", w, h, dpi, limit)
	}
	return Frame{Crop: crop, Scale: scale, Width: int(w), Height: int(h)}, nil
}

// Options tunes rasterization.
type Options struct {
	// Supersample is the oversampling factor; 1 disables supersampling and
	// 0 means DefaultSupersample. It is lowered automatically when the
	// layer would exceed the pixel budget.
	Supersample int

	// MaxPixels bounds both the image and the supersampled layer; 0 means
	// the package MaxPixels.
	MaxPixels int
}

func (o Options) limit() int {
	if o.MaxPixels > 0 {
		return o.MaxPixels
	}
	return MaxPixels
}

func (o Options) supersample(f Frame) int {
	ss := o.Supersample
	if ss <= 0 {
		ss = DefaultSupersample
	}
	for ss > 1 && f.Width*f.Height*ss*ss > o.limit() {
		ss--
	}
	return ss
}

// Export rasterizes s with st and returns PNG bytes.
func Export(s *scene.Scene, st settings.ExportSettings, opts Options) ([]byte, error) {
	img, err := Rasterize(s, st, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes img as PNG. Encoder failures are EXPORT_ENCODE_FAILED.
func Encode(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(w, img); err != nil {
		return errs.Wrap(errs.ErrCodeExportEncodeFailed, err, "encode png")
	}
	return nil
}

// Rasterize paints s into a new image sized by [PlanWithin].
func Rasterize(s *scene.Scene, st settings.ExportSettings, opts Options) (*image.RGBA, error) {
	f, err := PlanWithin(s.Bounds(), st.DPI, opts.limit())
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	if fill, ok := st.Fill(); ok {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)
	}

	ss := opts.supersample(f)
	layer := image.NewRGBA(image.Rect(0, 0, f.Width*ss, f.Height*ss))
	c := newCanvas(layer, f.Crop, f.Scale*float64(ss))
	for _, e := range s.Elements() {
		c.paint(e)
	}

	if ss == 1 {
		draw.Draw(dst, dst.Bounds(), layer, image.Point{}, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), layer, layer.Bounds(), draw.Over, nil)
	}
	return dst, nil
}
