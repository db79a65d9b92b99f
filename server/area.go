// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package server

import "github.com/gazed/qcore/math/lin"

// areaDepth and numAreaNodes fix the area tree's shape.
const (
	areaDepth    = 4
	numAreaNodes = (1 << (areaDepth + 1)) - 1
)

// AreaAxis selects which axis an area-tree branch splits on.
type AreaAxis int

const (
	AreaAxisX AreaAxis = iota
	AreaAxisY
)

type areaNode struct {
	leaf         bool
	axis         AreaAxis
	dist         float64
	front, back  int32
	triggers     map[int32]struct{}
	solids       map[int32]struct{}
}

// AreaTree is a 2-D BSP of fixed depth 4 (31 nodes total), built once
// from the world's axis-aligned bounding box.
type AreaTree struct {
	nodes []areaNode
}

// NewAreaTree builds the tree by recursively splitting the longer of
// the current X/Y extent at its midpoint.
func NewAreaTree(min, max lin.V3) *AreaTree {
	t := &AreaTree{nodes: make([]areaNode, numAreaNodes)}
	for i := range t.nodes {
		t.nodes[i] = areaNode{triggers: map[int32]struct{}{}, solids: map[int32]struct{}{}}
	}
	t.build(0, min, max, 0)
	return t
}

func (t *AreaTree) build(node int32, min, max lin.V3, depth int) {
	if depth >= areaDepth {
		t.nodes[node].leaf = true
		return
	}

	xExtent := max.X - min.X
	yExtent := max.Y - min.Y
	var axis AreaAxis
	var dist float64
	if xExtent > yExtent {
		axis = AreaAxisX
		dist = (min.X + max.X) / 2
	} else {
		axis = AreaAxisY
		dist = (min.Y + max.Y) / 2
	}

	front := 2*node + 1
	back := 2*node + 2
	t.nodes[node] = areaNode{axis: axis, dist: dist, front: front, back: back,
		triggers: t.nodes[node].triggers, solids: t.nodes[node].solids}

	frontMin, frontMax, backMin, backMax := min, max, min, max
	switch axis {
	case AreaAxisX:
		frontMin.X = dist
		backMax.X = dist
	case AreaAxisY:
		frontMin.Y = dist
		backMax.Y = dist
	}
	t.build(front, frontMin, frontMax, depth+1)
	t.build(back, backMin, backMax, depth+1)
}

// Unlink removes id from whatever area node it currently occupies.
func (t *AreaTree) Unlink(e *Entity, id int32) {
	if e.AreaID < 0 {
		return
	}
	n := &t.nodes[e.AreaID]
	delete(n.triggers, id)
	delete(n.solids, id)
	e.AreaID = -1
}

// itemInflateXY and defaultInflate are the bounding-box padding applied
// during Link: items get generous X/Y padding for easier pickup, every
// other entity gets a thin padding on every axis.
const (
	itemInflateXY  = 15.0
	defaultInflate = 1.0
)

// Link re-links id into the tree: it computes abs_min/abs_max from
// origin/mins/maxs (inflated per isItem), then descends the tree,
// stopping at the first node whose split the entity straddles, and
// inserts it into that node's triggers or solids set.
func (t *AreaTree) Link(e *Entity, id int32, origin, mins, maxs lin.V3, isItem bool) error {
	t.Unlink(e, id)

	absMin := lin.V3{X: origin.X + mins.X, Y: origin.Y + mins.Y, Z: origin.Z + mins.Z}
	absMax := lin.V3{X: origin.X + maxs.X, Y: origin.Y + maxs.Y, Z: origin.Z + maxs.Z}
	if isItem {
		absMin.X -= itemInflateXY
		absMin.Y -= itemInflateXY
		absMax.X += itemInflateXY
		absMax.Y += itemInflateXY
	} else {
		absMin.X -= defaultInflate
		absMin.Y -= defaultInflate
		absMin.Z -= defaultInflate
		absMax.X += defaultInflate
		absMax.Y += defaultInflate
		absMax.Z += defaultInflate
	}
	if err := e.PutVector("abs_min", absMin); err != nil {
		return err
	}
	if err := e.PutVector("abs_max", absMax); err != nil {
		return err
	}

	solidF, err := e.GetFloat("solid")
	if err != nil {
		return err
	}
	solid := Solid(int32(solidF))
	if solid == SolidNot {
		return nil
	}

	node := int32(0)
	for {
		n := &t.nodes[node]
		if n.leaf {
			break
		}
		amin, amax := axisValue(n.axis, absMin), axisValue(n.axis, absMax)
		switch {
		case amin > n.dist:
			node = n.front
		case amax < n.dist:
			node = n.back
		default:
			goto insert
		}
	}
insert:
	e.AreaID = node
	if solid == SolidTrigger {
		t.nodes[node].triggers[id] = struct{}{}
	} else {
		t.nodes[node].solids[id] = struct{}{}
	}
	return nil
}

func axisValue(axis AreaAxis, v lin.V3) float64 {
	if axis == AreaAxisX {
		return v.X
	}
	return v.Y
}

// TouchPredicate looks up trigger triggerID for ListTouchedTriggers: its
// absolute bounds tMin/tMax, whether its touch_fnc is non-zero, and ok
// false when the trigger cannot be resolved.
type TouchPredicate func(triggerID int32) (tMin, tMax lin.V3, hasTouchFunc bool, ok bool)

// ListTouchedTriggers walks the subtree rooted at node root (callers pass
// the tree root, 0), recursing into both children of every internal
// node, and collects every trigger (at any visited node) whose bounds
// overlap the probe, whose touch_fnc is non-zero, and which isn't the
// probe itself.
func (t *AreaTree) ListTouchedTriggers(root int32, probeID int32, probeMin, probeMax lin.V3, check TouchPredicate) []int32 {
	var out []int32
	t.collectTriggers(root, probeID, probeMin, probeMax, check, &out)
	return out
}

func (t *AreaTree) collectTriggers(node int32, probeID int32, probeMin, probeMax lin.V3, check TouchPredicate, out *[]int32) {
	n := &t.nodes[node]
	for triggerID := range n.triggers {
		if triggerID == probeID {
			continue
		}
		tMin, tMax, hasTouchFunc, ok := check(triggerID)
		if !ok || !hasTouchFunc {
			continue
		}
		if overlaps(probeMin, probeMax, tMin, tMax) {
			*out = append(*out, triggerID)
		}
	}
	if !n.leaf {
		t.collectTriggers(n.front, probeID, probeMin, probeMax, check, out)
		t.collectTriggers(n.back, probeID, probeMin, probeMax, check, out)
	}
}

func overlaps(aMin, aMax, bMin, bMax lin.V3) bool {
	return aMin.X <= bMax.X && aMax.X >= bMin.X &&
		aMin.Y <= bMax.Y && aMax.Y >= bMin.Y &&
		aMin.Z <= bMax.Z && aMax.Z >= bMin.Z
}
