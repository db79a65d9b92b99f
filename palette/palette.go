// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package palette loads the 256 entry RGB palette used to interpret
// every indexed byte found in bsp lightmaps, bsp mip textures, and mdl
// skins, and translates indexed pixel data into standard images.
//
// Package palette is provided as part of the qcore engine core.
package palette

import (
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// Size is the fixed number of palette entries a Quake-family palette file
// always carries: one byte per index, three bytes (R,G,B) per entry.
const Size = 256

// Palette is 256 RGB triples indexed by a texture or lightmap byte value.
// Index 255 is conventionally fullbright in the source data; qcore treats
// it like any other entry and leaves fullbright handling to the renderer.
type Palette struct {
	entries [Size]color.RGBA
}

// Decode reads a raw palette blob of exactly Size*3 bytes, one {r,g,b}
// triple per entry, and returns the parsed Palette.
func Decode(data []byte) (*Palette, error) {
	if len(data) != Size*3 {
		return nil, fmt.Errorf("palette: expected %d bytes, got %d", Size*3, len(data))
	}
	p := &Palette{}
	for i := 0; i < Size; i++ {
		o := i * 3
		p.entries[i] = color.RGBA{R: data[o], G: data[o+1], B: data[o+2], A: 0xff}
	}
	return p, nil
}

// At returns the RGBA color for a palette index. The index is a byte, so
// every value is a valid entry and At never panics.
func (p *Palette) At(index byte) color.RGBA { return p.entries[index] }

// ColorModel returns the color.Model backing Translate's output images.
func (p *Palette) ColorModel() color.Model { return color.RGBAModel }

// Translate converts a width x height block of palette-indexed bytes
// into a standard image.Image. It is used on bsp mip levels and mdl
// skins alike, both of which store raw indexed rows with no padding.
//
// Quake's convention is that index 255 in a texture (as opposed to a
// lightmap) marks a transparent texel; transparent is only meaningful
// for caller alpha-blended draws, so Translate does not bake alpha into
// the RGBA output; TransparentMask reports it as a separate mask, keeping
// the common opaque path allocation-free beyond the destination image.
func (p *Palette) Translate(indices []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("palette: invalid dimensions %dx%d", width, height)
	}
	if len(indices) != width*height {
		return nil, fmt.Errorf("palette: expected %d indices for %dx%d, got %d", width*height, width, height, len(indices))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, idx := range indices {
		img.SetRGBA(i%width, i/width, p.entries[idx])
	}
	return img, nil
}

// Resample scales a translated texture image to w x h with
// nearest-neighbor sampling, preserving the hard texel edges of palette
// art. Used for generating preview thumbnails and for padding textures
// whose source dimensions the renderer cannot take directly.
func Resample(src image.Image, w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("palette: invalid resample dimensions %dx%d", w, h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst, nil
}

// TransparentMask reports, for each pixel, whether its palette index is
// the conventional transparent sentinel (255).
func TransparentMask(indices []byte) []bool {
	mask := make([]bool, len(indices))
	for i, idx := range indices {
		mask[i] = idx == 0xff
	}
	return mask
}
