package raster

import (
	"image"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/drawview/pkg/scene"
)

var regular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// faceCache holds one face per pixel size for the duration of an export.
type faceCache struct {
	faces map[float64]font.Face
}

func newFaceCache() *faceCache {
	return &faceCache{faces: make(map[float64]font.Face)}
}

func (fc *faceCache) face(px float64) font.Face {
	px = math.Round(px*4) / 4
	if f, ok := fc.faces[px]; ok {
		return f
	}
	fnt, err := regular()
	if err != nil {
		return nil
	}
	f, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    px,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil
	}
	fc.faces[px] = f
	return f
}

// text draws each label line at the baseline used by the SVG sink, aligned
// with measured advances.
func (c *canvas) text(t *scene.Text) {
	size := t.Size * c.k
	if t.Color.A == 0 || size < 1 || len(t.Lines) == 0 {
		return
	}
	face := c.faces.face(size)
	if face == nil {
		return
	}

	b := t.Bounds()
	lh := t.Size * scene.LineHeight
	d := font.Drawer{Dst: c.img, Src: image.NewUniform(t.Color), Face: face}
	for i, line := range t.Lines {
		base := c.px(scene.Point{X: b.X, Y: b.Y + float64(i)*lh + lh*0.8})
		w := float64(d.MeasureString(line)) / 64

		x := base.x
		switch t.HAlign {
		case scene.AlignCenter:
			x = c.px(scene.Point{X: b.X + b.W/2}).x - w/2
		case scene.AlignRight:
			x = c.px(scene.Point{X: b.MaxX()}).x - w
		}
		d.Dot = fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(base.y * 64)}
		d.DrawString(line)
	}
}
