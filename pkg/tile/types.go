package tile

import "fmt"

// Buffer holds decoded pixel data in RGBA order, 8 bits per channel,
// 4 bytes per pixel, rows top to bottom. A Buffer is never mutated once
// it has been handed to the next pipeline stage.
type Buffer struct {
	Pix    []byte
	Width  int
	Height int
}

// NewBuffer allocates a zeroed RGBA buffer of the given size.
func NewBuffer(width, height int) *Buffer {
	return &Buffer{
		Pix:    make([]byte, width*height*4),
		Width:  width,
		Height: height,
	}
}

// offset returns the byte index of pixel (x, y). x == Width is valid as a
// row-end slice bound.
func (b *Buffer) offset(x, y int) int {
	return (y*b.Width + x) * 4
}

// row returns the pixel bytes of row y in columns [x0, x1).
func (b *Buffer) row(x0, x1, y int) []byte {
	return b.Pix[b.offset(x0, y):b.offset(x1, y)]
}

// pixel returns the 4 bytes of pixel (x, y).
func (b *Buffer) pixel(x, y int) []byte {
	i := b.offset(x, y)
	return b.Pix[i : i+4]
}

// DecodeError reports a source image that could not be read or decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("can't decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ConfigError reports a padding width that is invalid for a tile's
// geometry.
type ConfigError struct {
	Pad    int
	Width  int
	Height int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("padding %d invalid for %dx%d tile: need 0 <= pad < min(width, height)",
		e.Pad, e.Width, e.Height)
}

// LayoutError reports a tile whose dimensions break a batch invariant,
// such as a mismatched atlas height or texture-array layer size.
type LayoutError struct {
	Index      int
	Width      int
	Height     int
	WantWidth  int
	WantHeight int
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("tile %d is %dx%d, want %dx%d",
		e.Index, e.Width, e.Height, e.WantWidth, e.WantHeight)
}
