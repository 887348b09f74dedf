package pipeline

import (
	"context"
	"maps"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/drawview/pkg/cache"
	errs "github.com/matzehuels/drawview/pkg/errors"
	"github.com/matzehuels/drawview/pkg/model"
	"github.com/matzehuels/drawview/pkg/observability"
	"github.com/matzehuels/drawview/pkg/scene"
	"github.com/matzehuels/drawview/pkg/settings"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner stores no results. Multiple goroutines can safely use the same
// Runner with different payloads and options.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Renderer scene.Renderer
	Settings *settings.Store
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		Renderer: scene.Basic{},
		Settings: settings.NewStore(settings.DefaultExportSettings()),
	}
}

// Execute runs the complete pipeline over raw.
func (r *Runner) Execute(ctx context.Context, raw []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result, err := r.LoadScene(ctx, raw, opts)
	if err != nil {
		return nil, err
	}
	if err := r.ExportResult(ctx, result, opts); err != nil {
		return nil, err
	}
	return result, nil
}

// LoadScene runs the decode, parse and render stages.
func (r *Runner) LoadScene(ctx context.Context, raw []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	result := &Result{Artifacts: make(map[string][]byte)}

	m, err := r.load(ctx, raw, opts, result)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	s, err := Render(ctx, r.Renderer, m)
	if err != nil {
		return nil, err
	}
	result.Scene = s
	result.Stats.Elements = len(s.Elements())
	result.Stats.RenderTime = time.Since(renderStart)

	logger.Debug("rendered scene",
		"elements", result.Stats.Elements,
		"bounds", s.Bounds(),
		"duration", result.Stats.RenderTime)
	return result, nil
}

// ExportResult writes the formats requested by opts from a result produced
// by [Runner.LoadScene] and stores them in result.Artifacts.
func (r *Runner) ExportResult(ctx context.Context, result *Result, opts Options) error {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if result == nil || result.Scene == nil {
		return errs.New(errs.ErrCodeInternal, "nothing to export: result has no scene")
	}
	logger := opts.Logger
	s := result.Scene

	st := r.exportSettings(opts)
	exportStart := time.Now()
	pending := opts.Formats
	if opts.Wants(FormatSVG) {
		if data, hit := r.cachedSVG(ctx, result.ContentHash, st, opts); hit {
			result.Artifacts[FormatSVG] = data
			result.CacheInfo.SVGHit = true
			pending = without(pending, FormatSVG)
		}
	}

	artifacts, frame, err := Export(ctx, ExportRequest{
		Scene:       s,
		XML:         result.XML,
		Settings:    st,
		Formats:     pending,
		Supersample: opts.Supersample,
		MaxPixels:   opts.MaxPixels,
	})
	if err != nil {
		return err
	}
	maps.Copy(result.Artifacts, artifacts)
	result.Frame = frame
	result.Stats.ExportTime = time.Since(exportStart)

	if data, ok := artifacts[FormatSVG]; ok {
		r.store(ctx, "artifact", r.Keyer.ArtifactKey(result.ContentHash, ArtifactKeyOpts(FormatSVG, st)), data, cache.TTLArtifact)
	}

	logger.Info("exported diagram",
		"formats", opts.Formats,
		"dpi", st.DPI,
		"background", st.Background,
		"width", frame.Width,
		"height", frame.Height,
		"duration", result.Stats.ExportTime)
	return nil
}

// Load runs the decode and parse stages only.
func (r *Runner) Load(ctx context.Context, raw []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{Artifacts: make(map[string][]byte)}
	if _, err := r.load(ctx, raw, opts, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Runner) load(ctx context.Context, raw []byte, opts Options, result *Result) (*model.Model, error) {
	logger := opts.Logger
	result.ContentHash = cache.Hash(raw)
	result.Stats.InputBytes = len(raw)

	decodeStart := time.Now()
	xmlText, hit, err := r.DecodeWithCacheInfo(ctx, raw, opts)
	if err != nil {
		logger.Debug("decode failed", "bytes", len(raw), "err", err)
		return nil, err
	}
	result.XML = xmlText
	result.Stats.XMLBytes = len(xmlText)
	result.Stats.DecodeTime = time.Since(decodeStart)
	result.CacheInfo.DecodeHit = hit

	parseStart := time.Now()
	m, err := Parse(ctx, xmlText)
	if err != nil {
		logger.Debug("parse failed", "bytes", len(xmlText), "err", err)
		return nil, err
	}
	result.Model = m
	result.Stats.Model = m.Stats()
	result.Stats.ParseTime = time.Since(parseStart)

	logger.Debug("loaded diagram",
		"bytes", len(raw),
		"cells", result.Stats.Model.Cells,
		"cached", hit,
		"duration", result.Stats.DecodeTime+result.Stats.ParseTime)
	return m, nil
}

// DecodeWithCacheInfo decodes raw, consulting the cache first, and reports
// whether the XML came from the cache.
func (r *Runner) DecodeWithCacheInfo(ctx context.Context, raw []byte, opts Options) (string, bool, error) {
	r.applyLogger(&opts)
	key := r.Keyer.DocumentKey(cache.Hash(raw))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "document")
			return string(data), true, nil
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "key", key, "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "document")
	}

	xmlText, err := Decode(ctx, raw)
	if err != nil {
		return "", false, err
	}
	r.store(ctx, "document", key, []byte(xmlText), cache.TTLDocument)
	return xmlText, false, nil
}

func (r *Runner) cachedSVG(ctx context.Context, contentHash string, st settings.ExportSettings, opts Options) ([]byte, bool) {
	if opts.Refresh {
		return nil, false
	}
	key := r.Keyer.ArtifactKey(contentHash, ArtifactKeyOpts(FormatSVG, st))
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "artifact")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "artifact")
	return data, true
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// ExportSettings returns the settings a run with opts would use.
func (r *Runner) ExportSettings(opts Options) settings.ExportSettings {
	return r.exportSettings(opts)
}

func (r *Runner) exportSettings(opts Options) settings.ExportSettings {
	if opts.Export != nil {
		return *opts.Export
	}
	if r.Settings == nil {
		return settings.DefaultExportSettings()
	}
	return r.Settings.Load()
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func without(formats []string, format string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if f != format {
			out = append(out, f)
		}
	}
	return out
}
