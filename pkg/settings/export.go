package settings

import (
	"image/color"
	"sync/atomic"

	errs "github.com/matzehuels/drawview/pkg/errors"
)

// DefaultDPI is the export resolution used when none is configured.
const DefaultDPI = 300

// ExportSettings controls raster export. CustomColor is only used when
// Background is [BackgroundCustom].
type ExportSettings struct {
	DPI         int
	Background  Background
	CustomColor color.NRGBA
}

// DefaultExportSettings returns 300 DPI on the default (white) background.
func DefaultExportSettings() ExportSettings {
	return ExportSettings{DPI: DefaultDPI, Background: BackgroundDefault, CustomColor: White}
}

// Validate checks DPI and background.
func (s ExportSettings) Validate() error {
	if err := errs.ValidateDPI(s.DPI); err != nil {
		return err
	}
	if s.Background < BackgroundDefault || s.Background > BackgroundCustom {
		return errs.New(errs.ErrCodeInvalidInput, "unknown background %d", int(s.Background))
	}
	return nil
}

// Fill resolves the canvas fill color. ok is false for a transparent canvas.
func (s ExportSettings) Fill() (color.NRGBA, bool) {
	return Resolve(s.Background, s.CustomColor)
}

// Store holds the current ExportSettings. Readers always see a complete
// value; Set replaces it as a whole.
type Store struct {
	v atomic.Pointer[ExportSettings]
}

// NewStore returns a store holding initial.
func NewStore(initial ExportSettings) *Store {
	s := &Store{}
	s.v.Store(&initial)
	return s
}

// Load returns the current settings. A zero Store reports the defaults.
func (s *Store) Load() ExportSettings {
	if p := s.v.Load(); p != nil {
		return *p
	}
	return DefaultExportSettings()
}

// Set validates and installs next.
func (s *Store) Set(next ExportSettings) error {
	if err := next.Validate(); err != nil {
		return err
	}
	s.v.Store(&next)
	return nil
}
