// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package server

// collision.go implements the narrow and broad collision phases: hull
// selection for movers, swept traces against the world's BSP hulls and
// against other entities' box hulls, and the composite move that merges
// both results.

import (
	"github.com/gazed/qcore/bsp"
	"github.com/gazed/qcore/math/lin"
)

// MoveKind classifies how an entity moves. Numeric values are fixed by
// the bytecode VM's game logic.
type MoveKind int32

const (
	MoveNone        MoveKind = 0
	MoveAngleNoClip MoveKind = 1
	MoveAngleClip   MoveKind = 2
	MoveWalk        MoveKind = 3
	MoveStep        MoveKind = 4
	MoveFly         MoveKind = 5
	MoveToss        MoveKind = 6
	MovePush        MoveKind = 7
	MoveNoClip      MoveKind = 8
	MoveMissile     MoveKind = 9
	MoveBounce      MoveKind = 10
)

// TraceKind selects broad-phase trace behavior: Missile traces expand
// monster bounds by ±15 on every axis.
type TraceKind int

const (
	TraceNormal TraceKind = iota
	TraceNoMonsters
	TraceMissile
)

// FlagMonster marks an entity's flags field as a monster for missile
// bound expansion.
const FlagMonster = 1 << 5

// missileInflate is the monster bound expansion applied to Missile
// traces.
const missileInflate = 15.0

// WorldEntityID is the arena slot holding the world entity; a Trace
// whose EntityHit equals it hit static world geometry.
const WorldEntityID int32 = 0

// NoEntityHit is the EntityHit value of a trace that ran its full length.
const NoEntityHit int32 = -1

// Trace is the result of a swept-volume query: how far the sweep
// went, what stopped it, and the medium at the end point.
type Trace struct {
	StartSolid  bool
	AllSolid    bool
	Ratio       float64
	EndPoint    lin.V3
	PlaneHit    *bsp.Plane
	ContentsEnd bsp.Contents
	EntityHit   int32
}

// World couples the decoded BSP, the entity arena, and the area tree
// into the server's collision and spatial-query surface.
type World struct {
	Bsp   *bsp.World
	Arena *Arena
	Areas *AreaTree
}

// NewWorld builds the server world over a decoded map: the area tree is
// constructed once from the worldmodel's bounds.
func NewWorld(bspWorld *bsp.World, arena *Arena) *World {
	world := bspWorld.Models[0]
	return &World{
		Bsp:   bspWorld,
		Arena: arena,
		Areas: NewAreaTree(world.Min, world.Max),
	}
}

// clipHull is one resolved collision target: a hull, the plane table its
// nodes index, the root node to descend from, and the offset that maps
// trace coordinates into hull space.
type clipHull struct {
	hull   *bsp.Hull
	planes []bsp.Plane
	root   int32
	offset lin.V3
}

// hullIndexForSize picks which of the world's three hulls best matches a
// mover's x-extent: hull 0 below 3 units, hull 1 up to 32, hull 2
// beyond.
func hullIndexForSize(mins, maxs lin.V3) int {
	size := maxs.X - mins.X
	switch {
	case size < 3:
		return 0
	case size <= 32:
		return 1
	default:
		return 2
	}
}

// hullForEntity resolves the hull a mover with bounds mins/maxs collides
// against when sweeping past target. Brush entities (solid Bsp,
// move kind Push) expose one of the world's shared hulls offset so the
// hull origin coincides with the mover's origin; everything else gets a
// synthesized box hull from its own bounds.
func (w *World) hullForEntity(target *Entity, mins, maxs lin.V3) (clipHull, error) {
	solidF, err := target.GetFloat("solid")
	if err != nil {
		return clipHull{}, err
	}
	moveF, err := target.GetFloat("move_type")
	if err != nil {
		return clipHull{}, err
	}
	origin, err := target.GetVector("origin")
	if err != nil {
		return clipHull{}, err
	}

	if Solid(int32(solidF)) == SolidBsp {
		if MoveKind(int32(moveF)) != MovePush {
			return clipHull{}, newErr(ErrNoSuchEntity, "bsp-solid entity without push move kind")
		}
		modelF, err := target.GetFloat("model_index")
		if err != nil {
			return clipHull{}, err
		}
		modelIndex := int(modelF)
		if modelIndex < 0 || modelIndex >= len(w.Bsp.Models) {
			return clipHull{}, newErr(ErrNoSuchEntity, "bsp-solid entity model index %d out of range", modelIndex)
		}
		model := &w.Bsp.Models[modelIndex]
		h := hullIndexForSize(mins, maxs)
		hull := &w.Bsp.Hulls[h]
		offset := lin.V3{
			X: hull.Min.X - mins.X + origin.X,
			Y: hull.Min.Y - mins.Y + origin.Y,
			Z: hull.Min.Z - mins.Z + origin.Z,
		}
		return clipHull{hull: hull, planes: w.Bsp.Planes, root: model.HullRoots[h], offset: offset}, nil
	}

	// Non-brush entities collide as the Minkowski sum of their own box
	// and the mover's: grow the target's bounds by the mover's.
	tmins, err := target.GetVector("mins")
	if err != nil {
		return clipHull{}, err
	}
	tmaxs, err := target.GetVector("maxs")
	if err != nil {
		return clipHull{}, err
	}
	boxMins := lin.V3{X: tmins.X - maxs.X, Y: tmins.Y - maxs.Y, Z: tmins.Z - maxs.Z}
	boxMaxs := lin.V3{X: tmaxs.X - mins.X, Y: tmaxs.Y - mins.Y, Z: tmaxs.Z - mins.Z}
	hull, planes := bsp.NewBoxHull(boxMins, boxMaxs)
	return clipHull{hull: hull, planes: planes, root: 0, offset: origin}, nil
}

// traceThrough sweeps [start,end] through a resolved clip hull and maps
// the result back out of hull space.
func traceThrough(ch clipHull, start, end lin.V3) Trace {
	localStart := lin.V3{X: start.X - ch.offset.X, Y: start.Y - ch.offset.Y, Z: start.Z - ch.offset.Z}
	localEnd := lin.V3{X: end.X - ch.offset.X, Y: end.Y - ch.offset.Y, Z: end.Z - ch.offset.Z}

	ht := bsp.TraceHull(ch.planes, ch.hull, ch.root, localStart, localEnd)
	tr := Trace{
		StartSolid:  ht.StartSolid,
		AllSolid:    ht.AllSolid,
		Ratio:       ht.Ratio,
		PlaneHit:    ht.PlaneHit,
		ContentsEnd: ht.ContentsEnd,
		EntityHit:   NoEntityHit,
	}
	if ht.Ratio <= 0 {
		tr.EndPoint = start
	} else {
		tr.EndPoint = lin.V3{
			X: ht.EndPoint.X + ch.offset.X,
			Y: ht.EndPoint.Y + ch.offset.Y,
			Z: ht.EndPoint.Z + ch.offset.Z,
		}
	}
	return tr
}

// TraceWorld sweeps a mover with bounds mins/maxs from start to end
// through the worldmodel's best-fit hull.
func (w *World) TraceWorld(start, end, mins, maxs lin.V3) Trace {
	h := hullIndexForSize(mins, maxs)
	hull := &w.Bsp.Hulls[h]
	offset := lin.V3{
		X: hull.Min.X - mins.X,
		Y: hull.Min.Y - mins.Y,
		Z: hull.Min.Z - mins.Z,
	}
	ch := clipHull{hull: hull, planes: w.Bsp.Planes, root: w.Bsp.Models[0].HullRoots[h], offset: offset}
	tr := traceThrough(ch, start, end)
	if tr.Ratio < 1 || tr.StartSolid {
		tr.EntityHit = WorldEntityID
	}
	return tr
}

// TraceEntity sweeps the mover past a single target entity using the
// target's resolved hull.
func (w *World) TraceEntity(targetID int32, start, end, mins, maxs lin.V3) (Trace, error) {
	target, err := w.Arena.Entity(targetID)
	if err != nil {
		return Trace{}, err
	}
	ch, err := w.hullForEntity(target, mins, maxs)
	if err != nil {
		return Trace{}, err
	}
	tr := traceThrough(ch, start, end)
	if tr.Ratio < 1 || tr.StartSolid {
		tr.EntityHit = targetID
	}
	return tr, nil
}

// moveBounds is the union AABB of the sweep's start, end, and mover
// bounds, padded by one unit, used to prune the area-tree walk.
func moveBounds(start, end, mins, maxs lin.V3) (lin.V3, lin.V3) {
	lo := lin.V3{
		X: min(start.X, end.X) + mins.X - 1,
		Y: min(start.Y, end.Y) + mins.Y - 1,
		Z: min(start.Z, end.Z) + mins.Z - 1,
	}
	hi := lin.V3{
		X: max(start.X, end.X) + maxs.X + 1,
		Y: max(start.Y, end.Y) + maxs.Y + 1,
		Z: max(start.Z, end.Z) + maxs.Z + 1,
	}
	return lo, hi
}

// EachSolid walks every area node whose region overlaps [lo,hi] and
// calls fn for each solid entity linked there. fn returning false stops
// the walk.
func (t *AreaTree) EachSolid(lo, hi lin.V3, fn func(id int32) bool) {
	t.eachSolid(0, lo, hi, fn)
}

func (t *AreaTree) eachSolid(node int32, lo, hi lin.V3, fn func(id int32) bool) bool {
	n := &t.nodes[node]
	for id := range n.solids {
		if !fn(id) {
			return false
		}
	}
	if n.leaf {
		return true
	}
	if axisValue(n.axis, hi) > n.dist {
		if !t.eachSolid(n.front, lo, hi, fn) {
			return false
		}
	}
	if axisValue(n.axis, lo) < n.dist {
		if !t.eachSolid(n.back, lo, hi, fn) {
			return false
		}
	}
	return true
}

// maxOwnerChain bounds the owner-chain walk so a cyclic owner field
// cannot hang the broad phase.
const maxOwnerChain = 16

// inOwnerChain reports whether target appears in the owner chain
// starting at fromID (fromID's owner, that entity's owner, and so on, up
// to maxOwnerChain links).
func (w *World) inOwnerChain(fromID, target int32) bool {
	id := fromID
	for i := 0; i < maxOwnerChain; i++ {
		e, err := w.Arena.Entity(id)
		if err != nil {
			return false
		}
		owner, err := e.GetEntityID("owner")
		if err != nil || owner == 0 {
			return false
		}
		if owner == target {
			return true
		}
		id = owner
	}
	return false
}

// TraceEntities is the broad phase: walk the area tree into every
// node overlapping the sweep's bounds and clip the move against each
// solid entity found, keeping the nearest hit. moverID's own slot, its
// owner chain, and entities owned by it are skipped.
func (w *World) TraceEntities(start, end, mins, maxs lin.V3, kind TraceKind, moverID int32) Trace {
	best := Trace{Ratio: 1, EndPoint: end, EntityHit: NoEntityHit}
	lo, hi := moveBounds(start, end, mins, maxs)

	w.Areas.EachSolid(lo, hi, func(id int32) bool {
		if id == moverID {
			return true
		}
		target, err := w.Arena.Entity(id)
		if err != nil {
			return true
		}
		solidF, err := target.GetFloat("solid")
		if err != nil || Solid(int32(solidF)) == SolidTrigger {
			return true
		}
		if w.inOwnerChain(moverID, id) || w.inOwnerChain(id, moverID) {
			return true
		}

		clipMins, clipMaxs := mins, maxs
		flagsF, err := target.GetFloat("flags")
		if err == nil && kind == TraceMissile && int32(flagsF)&FlagMonster != 0 {
			clipMins = lin.V3{X: mins.X - missileInflate, Y: mins.Y - missileInflate, Z: mins.Z - missileInflate}
			clipMaxs = lin.V3{X: maxs.X + missileInflate, Y: maxs.Y + missileInflate, Z: maxs.Z + missileInflate}
		}
		if kind == TraceNoMonsters {
			moveF, err := target.GetFloat("move_type")
			if err == nil && MoveKind(int32(moveF)) == MoveStep {
				return true
			}
		}

		tr, err := w.TraceEntity(id, start, end, clipMins, clipMaxs)
		if err != nil {
			return true
		}
		if tr.AllSolid || tr.StartSolid || tr.Ratio < best.Ratio {
			tr.EntityHit = id
			if best.StartSolid {
				// keep the earlier start-solid verdict but take the
				// nearer end point.
				tr.StartSolid = true
			}
			best = tr
		} else if tr.StartSolid {
			best.StartSolid = true
		}
		return true
	})
	return best
}

// Move is the composite move: a world trace merged with the
// broad-phase entities trace, whichever stops the sweep sooner.
func (w *World) Move(start, end, mins, maxs lin.V3, kind TraceKind, moverID int32) Trace {
	world := w.TraceWorld(start, end, mins, maxs)
	if world.AllSolid {
		return world
	}
	ents := w.TraceEntities(start, end, mins, maxs, kind, moverID)
	if ents.AllSolid || ents.StartSolid {
		return ents
	}
	if ents.Ratio < world.Ratio {
		return ents
	}
	return world
}
