// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package bsp

// hull.go synthesizes collision hull 0 from the render tree and implements
// point/leaf lookups shared by the client (camera leaf) and server
// (collision) cores.

import "github.com/gazed/qcore/math/lin"

// synthesizeHull0 builds the point-collision hull by walking the render
// tree and replacing every leaf reference with that leaf's contents,
// leaving node structure (and therefore node count) identical to the
// render tree.
func synthesizeHull0(renderNodes []RenderNode, leaves []Leaf) Hull {
	nodes := make([]CollisionNode, len(renderNodes))
	for i, rn := range renderNodes {
		nodes[i] = CollisionNode{
			PlaneIndex: rn.PlaneIndex,
			Children:   [2]CollisionChild{hull0Child(rn.Children[0], leaves), hull0Child(rn.Children[1], leaves)},
		}
	}
	return Hull{Nodes: nodes, Min: lin.V3{}, Max: lin.V3{}}
}

func hull0Child(c RenderChild, leaves []Leaf) CollisionChild {
	if idx, ok := c.AsLeaf(); ok {
		contents := ContentsEmpty
		if int(idx) < len(leaves) {
			contents = leaves[idx].Contents
		}
		return NewCollisionContents(contents)
	}
	idx, _ := c.AsNode()
	return NewCollisionNode(idx)
}

// FindLeaf walks the render tree from its root (node 0) and returns the
// index of the leaf containing point p. Implementations must tolerate any
// acyclic layout, not just the file's natural walk order.
func (w *World) FindLeaf(p lin.V3) int32 {
	if len(w.RenderNodes) == 0 {
		return 0
	}
	child := NewRenderNode(0)
	for {
		idx, isNode := child.AsNode()
		if !isNode {
			leaf, _ := child.AsLeaf()
			return leaf
		}
		node := &w.RenderNodes[idx]
		plane := &w.Planes[node.PlaneIndex]
		if classify(plane, p) >= 0 {
			child = node.Children[0]
		} else {
			child = node.Children[1]
		}
	}
}

// classify returns the signed distance of p from plane, using the axis
// tag as a fast path when the plane is exactly axis-aligned.
func classify(plane *Plane, p lin.V3) float64 {
	switch plane.Axis {
	case AxisX:
		return p.X - plane.Dist
	case AxisY:
		return p.Y - plane.Dist
	case AxisZ:
		return p.Z - plane.Dist
	default:
		return plane.Normal.Dot(&p) - plane.Dist
	}
}

// NewBoxHull synthesizes a 6-plane axis-aligned box hull from a bounding
// box, for movers that collide as a simple AABB rather than against BSP
// geometry. It returns
// the hull together with the local plane table its nodes index into -
// trace it with TraceHull, not World.Trace.
func NewBoxHull(mins, maxs lin.V3) (*Hull, []Plane) {
	planes := []Plane{
		{Normal: lin.V3{X: 1}, Dist: maxs.X, Axis: AxisX},
		{Normal: lin.V3{X: 1}, Dist: mins.X, Axis: AxisX},
		{Normal: lin.V3{Y: 1}, Dist: maxs.Y, Axis: AxisY},
		{Normal: lin.V3{Y: 1}, Dist: mins.Y, Axis: AxisY},
		{Normal: lin.V3{Z: 1}, Dist: maxs.Z, Axis: AxisZ},
		{Normal: lin.V3{Z: 1}, Dist: mins.Z, Axis: AxisZ},
	}
	empty := NewCollisionContents(ContentsEmpty)
	solid := NewCollisionContents(ContentsSolid)

	// Planes 0,2,4 are the max-face planes: the front half (classify>=0,
	// outside the box on that axis) is empty, the back half continues to
	// the next plane. Planes 1,3,5 are the min-face planes: the front
	// half (inside on that axis) continues (or, for the last plane,
	// terminates solid); the back half is empty.
	nodes := []CollisionNode{
		{PlaneIndex: 0, Children: [2]CollisionChild{empty, NewCollisionNode(1)}},
		{PlaneIndex: 1, Children: [2]CollisionChild{NewCollisionNode(2), empty}},
		{PlaneIndex: 2, Children: [2]CollisionChild{empty, NewCollisionNode(3)}},
		{PlaneIndex: 3, Children: [2]CollisionChild{NewCollisionNode(4), empty}},
		{PlaneIndex: 4, Children: [2]CollisionChild{empty, NewCollisionNode(5)}},
		{PlaneIndex: 5, Children: [2]CollisionChild{solid, empty}},
	}
	return &Hull{Nodes: nodes, Min: mins, Max: maxs}, planes
}

// HullTrace is the result of walking a collision hull from its root,
// partitioning [start,end] at each splitting plane and reporting the
// fraction of the segment traversed before hitting solid content. This is
// the narrow-phase primitive the server package builds its swept-volume
// trace on top of.
type HullTrace struct {
	StartSolid  bool
	AllSolid    bool
	Ratio       float64 // fraction of [start,end] traversed, in [0,1].
	EndPoint    lin.V3
	PlaneHit    *Plane
	ContentsEnd Contents
}

// Trace performs a swept point trace through hull from root between start
// and end, against world's own plane table (w.Planes). Hulls 1 and 2 and
// the synthesized hull 0 all reference plane indices into this table.
func (w *World) Trace(hull *Hull, root int32, start, end lin.V3) HullTrace {
	return TraceHull(w.Planes, hull, root, start, end)
}

// TraceHull performs a swept point trace through hull from root, with
// hull node plane indices resolved against the supplied planes table
// rather than a *World's. This lets callers trace against a synthesized
// hull with its own local plane set (e.g. server's axis-aligned mover
// hulls), not just a world's decoded hulls.
func TraceHull(planes []Plane, hull *Hull, root int32, start, end lin.V3) HullTrace {
	t := traceState{planes: planes, hull: hull}
	endContents, _ := t.recurse(root, start, end, 0, 1)
	startLeafContents := t.startContents
	return HullTrace{
		StartSolid:  startLeafContents == ContentsSolid,
		AllSolid:    t.allSolid,
		Ratio:       t.ratio,
		EndPoint:    t.endPoint,
		PlaneHit:    t.planeHit,
		ContentsEnd: endContents,
	}
}

type traceState struct {
	planes        []Plane
	hull          *Hull
	allSolid      bool
	anyNonSolid   bool
	ratio         float64
	endPoint      lin.V3
	planeHit      *Plane
	startContents Contents
	started       bool
}

// recurse implements the classic Quake hull trace: split [p1,p2] at the
// node's plane, recurse into whichever side(s) the segment crosses, and
// the first time a solid leaf is reached record the crossing fraction.
func (t *traceState) recurse(node int32, p1, p2 lin.V3, f1, f2 float64) (Contents, bool) {
	n := &t.hull.Nodes[node]
	plane := &t.planes[n.PlaneIndex]
	d1 := classify(plane, p1)
	d2 := classify(plane, p2)

	if d1 >= 0 && d2 >= 0 {
		return t.sideRecurse(n, plane, 0, p1, p2, f1, f2)
	}
	if d1 < 0 && d2 < 0 {
		return t.sideRecurse(n, plane, 1, p1, p2, f1, f2)
	}

	// segment crosses the plane: split and recurse into the near side
	// first so the earliest crossing wins.
	frac := d1 / (d1 - d2)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	mid := lin.V3{
		X: p1.X + frac*(p2.X-p1.X),
		Y: p1.Y + frac*(p2.Y-p1.Y),
		Z: p1.Z + frac*(p2.Z-p1.Z),
	}
	fmid := f1 + frac*(f2-f1)

	side := 0
	if d1 < 0 {
		side = 1
	}
	contents, hit := t.sideRecurse(n, plane, side, p1, mid, f1, fmid)
	if hit {
		return contents, true
	}
	return t.sideRecurse(n, plane, 1-side, mid, p2, fmid, f2)
}

// sideRecurse recurses into one child of n. When that child is a solid
// terminal, plane (the splitting plane of n) is recorded as the point of
// impact, but only the first time - the innermost crossing along the
// trace is the one that matters.
func (t *traceState) sideRecurse(n *CollisionNode, plane *Plane, side int, p1, p2 lin.V3, f1, f2 float64) (Contents, bool) {
	child := n.Children[side]
	if idx, ok := child.AsNode(); ok {
		return t.recurse(idx, p1, p2, f1, f2)
	}
	contents, _ := child.AsContents()
	c, hit := t.terminalContents(contents, p2, f2)
	if hit && t.planeHit == nil {
		t.planeHit = plane
	}
	return c, hit
}

func (t *traceState) terminalContents(c Contents, p2 lin.V3, f2 float64) (Contents, bool) {
	if !t.started {
		t.started = true
		t.startContents = c
	}
	if c == ContentsSolid {
		if !t.anyNonSolid {
			t.allSolid = true
		}
		return c, true
	}
	t.anyNonSolid = true
	t.allSolid = false
	t.ratio = f2
	t.endPoint = p2
	return c, false
}
