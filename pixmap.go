package crunch

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Compile-time interface checks.
var (
	_ image.Image = (*Pixmap)(nil)
	_ xdraw.Image = (*Pixmap)(nil)
)

// Pixmap represents a rectangular pixel buffer with straight (non
// premultiplied) 8-bit RGBA pixels. The buffer is owned exclusively by the
// Pixmap; it is never shared or aliased between instances.
//
// It implements both image.Image (read-only) and draw.Image (read-write),
// making it compatible with Go's standard image ecosystem.
type Pixmap struct {
	width  int
	height int
	data   []uint8 // RGBA format, 4 bytes per pixel
}

// NewPixmap creates a new zero-filled pixmap with the given dimensions.
func NewPixmap(width, height int) *Pixmap {
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// LoadPNG decodes the PNG file at path into a pixmap.
//
// Inputs of any PNG color model (paletted, grayscale, RGB) are converted to
// straight-alpha RGBA via golang.org/x/image/draw.
func LoadPNG(path string) (*Pixmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("crunch: loading png %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("crunch: decoding png %s: %w", path, err)
	}

	b := img.Bounds()
	pm := NewPixmap(b.Dx(), b.Dy())
	xdraw.Draw(pm.nrgba(), pm.Bounds(), img, b.Min, xdraw.Src)
	return pm, nil
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.width
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.height
}

// Data returns the raw pixel data (RGBA format, straight alpha).
func (p *Pixmap) Data() []uint8 {
	return p.data
}

// nrgba wraps the pixel buffer in an image.NRGBA without copying.
// NRGBA keeps the straight-alpha bytes intact through encode and decode.
func (p *Pixmap) nrgba() *image.NRGBA {
	return &image.NRGBA{
		Pix:    p.data,
		Stride: p.width * 4,
		Rect:   image.Rect(0, 0, p.width, p.height),
	}
}

// SavePNG encodes the pixmap to a PNG file at path.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("crunch: saving png %s: %w", path, err)
	}

	if err := png.Encode(f, p.nrgba()); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("crunch: encoding png %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("crunch: saving png %s: %w", path, err)
	}
	return nil
}

// Premultiply scales each color channel by its alpha in place.
// Each component becomes trunc(component * alpha / 255). The byte layout is
// unchanged, so a premultiplied pixmap still round-trips through SavePNG.
func (p *Pixmap) Premultiply() {
	for i := 0; i < len(p.data); i += 4 {
		a := p.data[i+3]
		if a == 255 {
			continue
		}
		m := float32(a) / 255.0
		p.data[i+0] = uint8(float32(p.data[i+0]) * m)
		p.data[i+1] = uint8(float32(p.data[i+1]) * m)
		p.data[i+2] = uint8(float32(p.data[i+2]) * m)
	}
}

// Blit copies src into p with its top-left corner at (tx, ty).
// The caller ensures the destination region lies within p.
func (p *Pixmap) Blit(src *Pixmap, tx, ty int) {
	rowLen := src.width * 4
	for y := 0; y < src.height; y++ {
		si := y * rowLen
		di := ((ty+y)*p.width + tx) * 4
		copy(p.data[di:di+rowLen], src.data[si:si+rowLen])
	}
}

// BlitRotated copies src into p rotated 90 degrees clockwise, with the
// rotated image's top-left corner at (tx, ty). The destination region is
// src.Height() wide and src.Width() tall. The caller ensures it lies
// within p.
func (p *Pixmap) BlitRotated(src *Pixmap, tx, ty int) {
	r := src.height - 1
	for y := 0; y < src.width; y++ {
		for x := 0; x < src.height; x++ {
			di := ((ty+y)*p.width + tx + x) * 4
			si := ((r-x)*src.width + y) * 4
			copy(p.data[di:di+4], src.data[si:si+4])
		}
	}
}

// Equals reports whether p and other have the same dimensions and exactly
// equal pixel bytes.
func (p *Pixmap) Equals(other *Pixmap) bool {
	if p.width != other.width || p.height != other.height {
		return false
	}
	return bytes.Equal(p.data, other.data)
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return color.NRGBA{}
	}
	i := (y*p.width + x) * 4
	return color.NRGBA{R: p.data[i+0], G: p.data[i+1], B: p.data[i+2], A: p.data[i+3]}
}

// Set implements the draw.Image interface.
func (p *Pixmap) Set(x, y int, c color.Color) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	i := (y*p.width + x) * 4
	p.data[i+0] = n.R
	p.data[i+1] = n.G
	p.data[i+2] = n.B
	p.data[i+3] = n.A
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.NRGBAModel
}
