// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package client

import (
	"testing"

	"github.com/gazed/qcore/math/lin"
)

func perspProjection() lin.M4 {
	m := lin.M4{}
	m.Persp(90, 1, 0.1, 1000)
	return m
}

func TestCullPointForwardVisible(t *testing.T) {
	c := NewCamera(lin.V3{}, lin.V3{}, perspProjection())
	// world coordinates are X-forward: a point straight ahead is visible.
	if c.CullPoint(lin.V3{X: 10}) {
		t.Error("point straight ahead was culled")
	}
}

func TestCullPointBehind(t *testing.T) {
	c := NewCamera(lin.V3{}, lin.V3{}, perspProjection())
	if !c.CullPoint(lin.V3{X: -10}) {
		t.Error("point behind the camera was not culled")
	}
}

func TestCullPointFarToTheSide(t *testing.T) {
	c := NewCamera(lin.V3{}, lin.V3{}, perspProjection())
	if !c.CullPoint(lin.V3{X: 1, Y: 100}) {
		t.Error("point far outside the 90° frustum was not culled")
	}
}

func TestCullPointTranslatedCamera(t *testing.T) {
	c := NewCamera(lin.V3{X: 50}, lin.V3{}, perspProjection())
	if c.CullPoint(lin.V3{X: 60}) {
		t.Error("point ahead of the moved camera was culled")
	}
	if !c.CullPoint(lin.V3{X: 40}) {
		t.Error("point behind the moved camera was not culled")
	}
}

func TestCullPointYawedCamera(t *testing.T) {
	// yaw 90°: the camera faces down world +Y.
	c := NewCamera(lin.V3{}, lin.V3{Y: 90}, perspProjection())
	if c.CullPoint(lin.V3{Y: 10}) {
		t.Error("point along the yawed view direction was culled")
	}
	if !c.CullPoint(lin.V3{Y: -10}) {
		t.Error("point behind the yawed camera was not culled")
	}
}
