package tile

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
)

// Load reads the image at path and decodes it into an RGBA buffer.
func Load(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	buf, err := Decode(data)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	return buf, nil
}

// Decode detects the image format from its magic bytes and decodes it.
func Decode(data []byte) (*Buffer, error) {
	var img image.Image
	var err error

	switch {
	case len(data) >= 4 && bytes.Equal(data[:4], []byte{0x89, 0x50, 0x4E, 0x47}):
		img, err = png.Decode(bytes.NewReader(data))
	case len(data) >= 2 && bytes.Equal(data[:2], []byte{0xFF, 0xD8}):
		img, err = jpeg.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unrecognized image format")
	}
	if err != nil {
		return nil, err
	}

	return FromImage(img), nil
}

// FromImage converts any decoded image to an RGBA buffer.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	buf := NewBuffer(bounds.Dx(), bounds.Dy())

	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			idx := buf.offset(x, y)
			buf.Pix[idx] = byte(r >> 8)
			buf.Pix[idx+1] = byte(g >> 8)
			buf.Pix[idx+2] = byte(b >> 8)
			buf.Pix[idx+3] = byte(a >> 8)
		}
	}

	return buf
}

// Pad returns a copy of src enlarged by pad pixels on every side. The
// border is filled by edge extrusion: every border pixel is a byte-exact
// copy of its nearest source edge or corner pixel, never a blend. The
// extra ring keeps mip filtering and atlas sampling from bleeding across
// tile seams.
func Pad(src *Buffer, pad int) (*Buffer, error) {
	if pad < 0 || (pad > 0 && (pad >= src.Width || pad >= src.Height)) {
		return nil, &ConfigError{Pad: pad, Width: src.Width, Height: src.Height}
	}

	w, h := src.Width, src.Height
	out := NewBuffer(w+2*pad, h+2*pad)

	// Center: the source tile, byte for byte.
	for y := 0; y < h; y++ {
		copy(out.row(pad, pad+w, pad+y), src.row(0, w, y))
	}

	if pad == 0 {
		return out, nil
	}

	// Top and bottom strips replicate the first and last source rows.
	top := src.row(0, w, 0)
	bottom := src.row(0, w, h-1)
	for r := 0; r < pad; r++ {
		copy(out.row(pad, pad+w, r), top)
		copy(out.row(pad, pad+w, pad+h+r), bottom)
	}

	// Left and right strips replicate the edge columns.
	for y := 0; y < h; y++ {
		left := src.pixel(0, y)
		right := src.pixel(w-1, y)
		for x := 0; x < pad; x++ {
			copy(out.pixel(x, pad+y), left)
			copy(out.pixel(pad+w+x, pad+y), right)
		}
	}

	// Corner blocks replicate the four corner pixels.
	corners := []struct {
		px     []byte
		x0, y0 int
	}{
		{src.pixel(0, 0), 0, 0},
		{src.pixel(w-1, 0), pad + w, 0},
		{src.pixel(0, h-1), 0, pad + h},
		{src.pixel(w-1, h-1), pad + w, pad + h},
	}
	for _, c := range corners {
		for y := 0; y < pad; y++ {
			for x := 0; x < pad; x++ {
				copy(out.pixel(c.x0+x, c.y0+y), c.px)
			}
		}
	}

	return out, nil
}

// Assemble lays tiles out left to right with no gaps, in input order.
// Tile i starts at the sum of the widths of tiles 0..i-1. Every tile must
// share the first tile's height.
func Assemble(tiles []*Buffer) (*Buffer, error) {
	if len(tiles) == 0 {
		return nil, fmt.Errorf("no tiles to assemble")
	}

	height := tiles[0].Height
	width := 0
	for i, t := range tiles {
		if t.Height != height {
			return nil, &LayoutError{
				Index:      i,
				Width:      t.Width,
				Height:     t.Height,
				WantWidth:  t.Width,
				WantHeight: height,
			}
		}
		width += t.Width
	}

	atlas := NewBuffer(width, height)
	x := 0
	for _, t := range tiles {
		for y := 0; y < height; y++ {
			copy(atlas.row(x, x+t.Width, y), t.row(0, t.Width, y))
		}
		x += t.Width
	}

	return atlas, nil
}

// SameSize verifies that every buffer matches the first one's dimensions,
// the precondition the external tool imposes on texture-array layers.
func SameSize(tiles []*Buffer) error {
	if len(tiles) == 0 {
		return nil
	}

	w, h := tiles[0].Width, tiles[0].Height
	for i, t := range tiles[1:] {
		if t.Width != w || t.Height != h {
			return &LayoutError{
				Index:      i + 1,
				Width:      t.Width,
				Height:     t.Height,
				WantWidth:  w,
				WantHeight: h,
			}
		}
	}

	return nil
}

// RGBA copies the buffer into a stdlib image.RGBA.
func (b *Buffer) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(img.Pix, b.Pix)
	return img
}

// EncodePNG encodes the buffer as PNG bytes.
func EncodePNG(b *Buffer) ([]byte, error) {
	var out bytes.Buffer
	if err := png.Encode(&out, b.RGBA()); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// WritePNG writes the buffer to filename as PNG.
func WritePNG(filename string, b *Buffer) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, b.RGBA())
}
