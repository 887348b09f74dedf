package pipeline

import (
	"bytes"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	errs "github.com/matzehuels/drawview/pkg/errors"
	"github.com/matzehuels/drawview/pkg/model"
	"github.com/matzehuels/drawview/pkg/observability"
	"github.com/matzehuels/drawview/pkg/raster"
	"github.com/matzehuels/drawview/pkg/scene"
	"github.com/matzehuels/drawview/pkg/settings"
)

// Render lays m out with r, or with [scene.Basic] when r is nil.
func Render(ctx context.Context, r scene.Renderer, m *model.Model) (*scene.Scene, error) {
	if r == nil {
		r = scene.Basic{}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, m.Len())
	start := time.Now()

	s, err := r.Render(m)
	if err == nil && s == nil {
		err = errs.New(errs.ErrCodeInternal, "renderer returned no scene")
	}
	if err != nil && errs.GetCode(err) == "" {
		err = errs.Wrap(errs.ErrCodeInternal, err, "render diagram")
	}

	elements := 0
	if s != nil {
		elements = len(s.Elements())
	}
	hooks.OnRenderComplete(ctx, elements, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ExportRequest is the input of [Export].
type ExportRequest struct {
	Scene       *scene.Scene
	XML         string
	Settings    settings.ExportSettings
	Formats     []string
	Supersample int
	MaxPixels   int // raster pixel budget; 0 means raster.MaxPixels
}

// Export produces every requested format from one scene. Formats are written
// concurrently; the scene is immutable, so they share it without locking.
// The first failure cancels the remaining formats and is returned.
func Export(ctx context.Context, req ExportRequest) (map[string][]byte, raster.Frame, error) {
	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(req.Formats))
		frame     raster.Frame
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, format := range req.Formats {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, f, err := exportFormat(ctx, req, format)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			artifacts[format] = data
			if format == FormatPNG {
				frame = f
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, raster.Frame{}, err
	}
	return artifacts, frame, nil
}

func exportFormat(ctx context.Context, req ExportRequest, format string) ([]byte, raster.Frame, error) {
	hooks := observability.Pipeline()
	hooks.OnExportStart(ctx, format, float64(req.Settings.DPI))
	start := time.Now()

	var (
		data  []byte
		frame raster.Frame
		err   error
	)
	switch format {
	case FormatPNG:
		ropts := raster.Options{Supersample: req.Supersample, MaxPixels: req.MaxPixels}
		frame, err = raster.PlanWithin(req.Scene.Bounds(), req.Settings.DPI, req.MaxPixels)
		if err == nil {
			data, err = raster.Export(req.Scene, req.Settings, ropts)
		}
	case FormatSVG:
		data, err = SVG(req.Scene, req.Settings)
	case FormatXML:
		data = []byte(req.XML)
	default:
		err = ValidateFormat(format)
	}

	hooks.OnExportComplete(ctx, format, len(data), time.Since(start), err)
	return data, frame, err
}

// SVG writes s as an SVG document on the background selected by st.
// DPI does not apply to vector output.
func SVG(s *scene.Scene, st settings.ExportSettings) ([]byte, error) {
	var opts []scene.SVGOption
	opts = append(opts, scene.WithPadding(raster.Padding))
	if fill, ok := st.Fill(); ok {
		opts = append(opts, scene.WithBackground(fill))
	}
	var buf bytes.Buffer
	if err := scene.WriteSVG(&buf, s, opts...); err != nil {
		return nil, errs.Wrap(errs.ErrCodeExportEncodeFailed, err, "write svg")
	}
	return buf.Bytes(), nil
}
