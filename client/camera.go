// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package client

import (
	"github.com/gazed/qcore/math/lin"
)

// Camera tracks a view/projection transform pair and the six frustum
// clip planes derived from it, precomputed once per frame so point
// culls are six dot products.
type Camera struct {
	view           lin.M4
	projection     lin.M4
	viewProjection lin.M4
	planes         [6]plane
}

// plane is a row-vector frustum plane taken from the view-projection
// matrix: a renderer-frame point (x, y, z, 1) is inside iff
// plane.dot(x, y, z, 1) >= 0.
type plane struct {
	X, Y, Z, W float64
}

func (p plane) dot(x, y, z, w float64) float64 {
	return p.X*x + p.Y*y + p.Z*z + p.W*w
}

// convert maps the world's Z-up, X-forward coordinates to the renderer's
// Y-up right-handed frame.
func convert(v lin.V3) lin.V3 { return lin.V3{X: -v.Y, Y: v.Z, Z: -v.X} }

// NewCamera builds a camera looking from origin with the given Euler
// angles (pitch, yaw, roll, in degrees) and projection matrix.
func NewCamera(origin, angles lin.V3, projection lin.M4) *Camera {
	c := &Camera{projection: projection}
	rot := rotationFromAngles(angles)
	c.view.SetQ(rot)
	conv := convert(origin)
	c.view.TranslateTM(-conv.X, -conv.Y, -conv.Z)
	c.viewProjection.Mult(&c.view, &c.projection)
	c.planes = extractPlanes(&c.viewProjection)
	return c
}

// rotationFromAngles composes the camera's orientation in the renderer
// frame: yaw about +Y (up), then pitch about +X, then roll about +Z
// (the forward axis). The view path applies the inverse rotation, so
// the returned quaternion is the camera's own orientation.
func rotationFromAngles(angles lin.V3) *lin.Q {
	yaw := lin.NewQ().SetAa(0, 1, 0, lin.Rad(angles.Y))
	pitch := lin.NewQ().SetAa(1, 0, 0, lin.Rad(-angles.X))
	roll := lin.NewQ().SetAa(0, 0, 1, lin.Rad(-angles.Z))

	q := lin.NewQ().Mult(yaw, pitch)
	return q.Mult(q, roll)
}

// extractPlanes derives the six view-frustum clip planes (w+x, w-x, w+y,
// w-y, w+z, w-z) from a view-projection matrix.
func extractPlanes(vp *lin.M4) [6]plane {
	return [6]plane{
		{vp.Xw + vp.Xx, vp.Yw + vp.Yx, vp.Zw + vp.Zx, vp.Ww + vp.Wx}, // w+x
		{vp.Xw - vp.Xx, vp.Yw - vp.Yx, vp.Zw - vp.Zx, vp.Ww - vp.Wx}, // w-x
		{vp.Xw + vp.Xy, vp.Yw + vp.Yy, vp.Zw + vp.Zy, vp.Ww + vp.Wy}, // w+y
		{vp.Xw - vp.Xy, vp.Yw - vp.Yy, vp.Zw - vp.Zy, vp.Ww - vp.Wy}, // w-y
		{vp.Xw + vp.Xz, vp.Yw + vp.Yz, vp.Zw + vp.Zz, vp.Ww + vp.Wz}, // w+z
		{vp.Xw - vp.Xz, vp.Yw - vp.Yz, vp.Zw - vp.Zz, vp.Ww - vp.Wz}, // w-z
	}
}

// CullPoint reports whether world point p lies outside the view frustum:
// p is mapped into the renderer frame and is culled iff any of the six
// planes classifies it as behind.
func (c *Camera) CullPoint(p lin.V3) bool {
	v := convert(p)
	for _, pl := range c.planes {
		if pl.dot(v.X, v.Y, v.Z, 1) < 0 {
			return true
		}
	}
	return false
}

// ViewProjection returns the camera's combined view-projection matrix.
func (c *Camera) ViewProjection() lin.M4 { return c.viewProjection }
