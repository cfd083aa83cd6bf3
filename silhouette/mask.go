// Package silhouette turns raw photographs into binary foreground masks.
//
// A mask classifies every pixel of one capture as object (foreground) or
// background. Masks are derived once per image and never mutated afterwards.
package silhouette

import "image"

// Mask is a 2D boolean grid with the same pixel dimensions as its source
// image. True means the pixel belongs to the object.
type Mask struct {
	width, height int
	bits          []bool
}

// NewMask returns an all-background mask of the given dimensions.
func NewMask(width, height int) *Mask {
	return &Mask{
		width:  width,
		height: height,
		bits:   make([]bool, width*height),
	}
}

// NewUniformMask returns a mask with every pixel set to the given class.
func NewUniformMask(width, height int, foreground bool) *Mask {
	m := NewMask(width, height)
	if foreground {
		for i := range m.bits {
			m.bits[i] = true
		}
	}
	return m
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int {
	return m.width
}

// Height returns the mask height in pixels.
func (m *Mask) Height() int {
	return m.height
}

// Bounds returns the pixel bounds of the mask.
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// In reports whether the pixel coordinate lies within the mask.
func (m *Mask) In(x, y int) bool {
	return x >= 0 && x < m.width && y >= 0 && y < m.height
}

// Foreground reports whether the pixel at (x, y) belongs to the object.
// Coordinates outside the mask are background.
func (m *Mask) Foreground(x, y int) bool {
	if !m.In(x, y) {
		return false
	}
	return m.bits[y*m.width+x]
}

// SetForeground assigns the pixel's class. Out-of-bounds coordinates are ignored.
func (m *Mask) SetForeground(x, y int, foreground bool) {
	if !m.In(x, y) {
		return
	}
	m.bits[y*m.width+x] = foreground
}

// ForegroundCount returns the number of object pixels.
func (m *Mask) ForegroundCount() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}
