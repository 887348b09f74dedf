package settings

import (
	"image/color"
	"sync"
	"testing"

	errs "github.com/matzehuels/drawview/pkg/errors"
)

func TestParseBackground(t *testing.T) {
	tests := []struct {
		in      string
		want    Background
		wantErr bool
	}{
		{"", BackgroundDefault, false},
		{"default", BackgroundDefault, false},
		{"White", BackgroundWhite, false},
		{" black ", BackgroundBlack, false},
		{"transparent", BackgroundTransparent, false},
		{"custom", BackgroundCustom, false},
		{"purple", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBackground(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBackground(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				if !errs.Is(err, errs.ErrCodeInvalidInput) {
					t.Errorf("error code = %s", errs.GetCode(err))
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseBackground(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if tt.in != "" && got.String() == "" {
				t.Error("empty String()")
			}
		})
	}
}

func TestBackgroundText(t *testing.T) {
	for _, name := range BackgroundNames() {
		var b Background
		if err := b.UnmarshalText([]byte(name)); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", name, err)
		}
		out, _ := b.MarshalText()
		if string(out) != name {
			t.Errorf("MarshalText = %q, want %q", out, name)
		}
	}
}

func TestResolve(t *testing.T) {
	custom := color.NRGBA{0x11, 0x22, 0x33, 0xff}
	tests := []struct {
		bg     Background
		want   color.NRGBA
		wantOK bool
	}{
		{BackgroundDefault, White, true},
		{BackgroundWhite, White, true},
		{BackgroundBlack, Black, true},
		{BackgroundCustom, custom, true},
		{BackgroundTransparent, color.NRGBA{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.bg.String(), func(t *testing.T) {
			got, ok := Resolve(tt.bg, custom)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Resolve(%v) = %v, %v; want %v, %v", tt.bg, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#112233", color.NRGBA{0x11, 0x22, 0x33, 0xff}, false},
		{"#fff", color.NRGBA{0xff, 0xff, 0xff, 0xff}, false},
		{"#11223380", color.NRGBA{0x11, 0x22, 0x33, 0x80}, false},
		{"112233", color.NRGBA{}, true},
		{"#zzzzzz", color.NRGBA{}, true},
		{"#112233zz", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatColor(t *testing.T) {
	if got := FormatColor(color.NRGBA{0x11, 0x22, 0x33, 0xff}); got != "#112233" {
		t.Errorf("FormatColor = %q", got)
	}
	if got := FormatColor(color.NRGBA{0x11, 0x22, 0x33, 0x80}); got != "#11223380" {
		t.Errorf("FormatColor = %q", got)
	}
}

func TestExportSettingsValidate(t *testing.T) {
	if err := DefaultExportSettings().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
	bad := []ExportSettings{
		{DPI: 0},
		{DPI: -96},
		{DPI: 5000},
		{DPI: 96, Background: Background(42)},
	}
	for _, s := range bad {
		if err := s.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", s)
		}
	}
}

func TestStore(t *testing.T) {
	var zero Store
	if got := zero.Load(); got != DefaultExportSettings() {
		t.Errorf("zero Store Load = %+v", got)
	}

	s := NewStore(DefaultExportSettings())
	next := ExportSettings{DPI: 144, Background: BackgroundCustom, CustomColor: color.NRGBA{1, 2, 3, 255}}
	if err := s.Set(next); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := s.Load(); got != next {
		t.Errorf("Load = %+v, want %+v", got, next)
	}

	if err := s.Set(ExportSettings{DPI: 0}); err == nil {
		t.Error("Set accepted invalid settings")
	}
	if got := s.Load(); got != next {
		t.Errorf("invalid Set changed state: %+v", got)
	}
}

func TestStoreConcurrentWholeValue(t *testing.T) {
	a := ExportSettings{DPI: 96, Background: BackgroundBlack, CustomColor: Black}
	b := ExportSettings{DPI: 600, Background: BackgroundCustom, CustomColor: color.NRGBA{9, 9, 9, 255}}
	s := NewStore(a)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if i%2 == 0 {
				_ = s.Set(b)
			} else {
				_ = s.Set(a)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if got := s.Load(); got != a && got != b {
				t.Errorf("torn read: %+v", got)
				return
			}
		}
	}()
	wg.Wait()
}
