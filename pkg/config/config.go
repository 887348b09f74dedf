// Package config loads drawview's TOML configuration and publishes changes.
//
// The file lives at $XDG_CONFIG_HOME/drawview/config.toml by default:
//
//	[export]
//	dpi = 300
//	background = "custom"   # default | white | black | transparent | custom
//	custom_color = "#112233"
//
//	[view]
//	background = "default"
//	custom_color = "#ffffff"
//
//	[cache]
//	dir = ""                # empty: the user cache directory
//	disabled = false
//
//	[server]
//	addr = ":8080"
//	redis = ""              # host:port of a shared cache
//
// Missing keys keep their defaults. The [export] and [view] sections can be
// reloaded while a process runs; see [Watcher] and [Apply].
package config

import (
	"image/color"

	errs "github.com/matzehuels/drawview/pkg/errors"
	"github.com/matzehuels/drawview/pkg/settings"
)

// Section names reported in [Event.Changed].
const (
	SectionExport = "export"
	SectionView   = "view"
	SectionCache  = "cache"
	SectionServer = "server"
)

// ReloadableSections can change without restarting the process.
var ReloadableSections = []string{SectionExport, SectionView}

// Config is the decoded configuration file.
type Config struct {
	Export ExportConfig `toml:"export"`
	View   ViewConfig   `toml:"view"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// ExportConfig is the [export] section.
type ExportConfig struct {
	DPI         int    `toml:"dpi"`
	Background  string `toml:"background"`
	CustomColor string `toml:"custom_color"`
}

// ViewConfig is the [view] section.
type ViewConfig struct {
	Background  string `toml:"background"`
	CustomColor string `toml:"custom_color"`
}

// CacheConfig is the [cache] section.
type CacheConfig struct {
	Dir      string `toml:"dir"`
	Disabled bool   `toml:"disabled"`
}

// ServerConfig is the [server] section.
type ServerConfig struct {
	Addr  string `toml:"addr"`
	Redis string `toml:"redis"`

	// KeyPrefix namespaces cache keys when several deployments share Redis.
	KeyPrefix string `toml:"key_prefix"`

	// MaxPixels caps the PNG size of one request; 0 keeps the server default.
	MaxPixels int `toml:"max_pixels"`
}

// DefaultAddr is the HTTP listen address used when none is configured.
const DefaultAddr = ":8080"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Export: ExportConfig{
			DPI:         settings.DefaultDPI,
			Background:  settings.BackgroundDefault.String(),
			CustomColor: settings.FormatColor(settings.White),
		},
		View: ViewConfig{
			Background:  settings.BackgroundDefault.String(),
			CustomColor: settings.FormatColor(settings.White),
		},
		Server: ServerConfig{Addr: DefaultAddr},
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := c.Export.Settings(); err != nil {
		return err
	}
	if _, err := c.View.Presentation(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "server.addr must not be empty")
	}
	if c.Server.MaxPixels < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "server.max_pixels must not be negative, got %d", c.Server.MaxPixels)
	}
	return nil
}

// Settings converts the section to export settings.
func (c ExportConfig) Settings() (settings.ExportSettings, error) {
	bg, col, err := background("export", c.Background, c.CustomColor)
	if err != nil {
		return settings.ExportSettings{}, err
	}
	st := settings.ExportSettings{DPI: c.DPI, Background: bg, CustomColor: col}
	if err := st.Validate(); err != nil {
		return settings.ExportSettings{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "export.dpi")
	}
	return st, nil
}

// Presentation converts the section to a live-view presentation.
func (c ViewConfig) Presentation() (settings.Presentation, error) {
	bg, col, err := background("view", c.Background, c.CustomColor)
	if err != nil {
		return settings.Presentation{}, err
	}
	return settings.Presentation{Mode: bg, Color: col}, nil
}

func background(section, mode, custom string) (settings.Background, color.NRGBA, error) {
	bg, err := settings.ParseBackground(mode)
	if err != nil {
		return 0, color.NRGBA{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "%s.background", section)
	}
	col := settings.White
	if custom != "" {
		col, err = settings.ParseColor(custom)
		if err != nil {
			return 0, color.NRGBA{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "%s.custom_color", section)
		}
	}
	return bg, col, nil
}

// Apply installs the reloadable sections of c: export settings replace the
// store's value as a whole, and the policy is updated (notifying its views)
// only when the presentation actually changed. Nothing is applied if either
// section is invalid.
func Apply(c Config, store *settings.Store, policy *settings.Policy) error {
	st, err := c.Export.Settings()
	if err != nil {
		return err
	}
	p, err := c.View.Presentation()
	if err != nil {
		return err
	}
	if store != nil {
		if err := store.Set(st); err != nil {
			return err
		}
	}
	if policy != nil && policy.Current() != p {
		policy.Set(p)
	}
	return nil
}

// changedSections lists the sections that differ between old and next.
func changedSections(old, next Config) []string {
	var changed []string
	if old.Export != next.Export {
		changed = append(changed, SectionExport)
	}
	if old.View != next.View {
		changed = append(changed, SectionView)
	}
	if old.Cache != next.Cache {
		changed = append(changed, SectionCache)
	}
	if old.Server != next.Server {
		changed = append(changed, SectionServer)
	}
	return changed
}
