// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package server

import (
	"testing"

	"github.com/gazed/qcore/bsp"
	"github.com/gazed/qcore/math/lin"
)

// floorWorld builds a minimal decoded world: one horizontal plane z=0
// whose upper half-space is empty and lower half-space solid, shared by
// all three hulls.
func floorWorld() *bsp.World {
	nodes := []bsp.CollisionNode{
		{PlaneIndex: 0, Children: [2]bsp.CollisionChild{
			bsp.NewCollisionContents(bsp.ContentsEmpty),
			bsp.NewCollisionContents(bsp.ContentsSolid),
		}},
	}
	w := &bsp.World{
		Planes: []bsp.Plane{{Normal: lin.V3{Z: 1}, Dist: 0, Axis: bsp.AxisZ}},
		Models: []bsp.Model{{
			Min: lin.V3{X: -128, Y: -128, Z: -128},
			Max: lin.V3{X: 128, Y: 128, Z: 128},
		}},
	}
	for h := range w.Hulls {
		w.Hulls[h] = bsp.Hull{Nodes: nodes}
	}
	return w
}

// openWorld is floorWorld with the solid half removed: nothing for a
// sweep to hit, so entity clipping can be tested in isolation.
func openWorld() *bsp.World {
	w := floorWorld()
	nodes := []bsp.CollisionNode{
		{PlaneIndex: 0, Children: [2]bsp.CollisionChild{
			bsp.NewCollisionContents(bsp.ContentsEmpty),
			bsp.NewCollisionContents(bsp.ContentsEmpty),
		}},
	}
	for h := range w.Hulls {
		w.Hulls[h].Nodes = nodes
	}
	return w
}

func newTestWorld(bspWorld *bsp.World) *World {
	return NewWorld(bspWorld, NewArena(16, StandardTypeDescriptor()))
}

// spawnBox installs and links a box-solid entity.
func spawnBox(t *testing.T, w *World, origin, mins, maxs lin.V3) int32 {
	t.Helper()
	id, e, err := w.Arena.Spawn()
	if err != nil {
		t.Fatal(err)
	}
	for name, v := range map[string]lin.V3{"origin": origin, "mins": mins, "maxs": maxs} {
		if err := e.PutVector(name, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.PutFloat("solid", float64(SolidBBox)); err != nil {
		t.Fatal(err)
	}
	if err := w.Areas.Link(e, id, origin, mins, maxs, false); err != nil {
		t.Fatal(err)
	}
	return id
}

func TestTraceWorldHitsFloorAtMidpoint(t *testing.T) {
	w := newTestWorld(floorWorld())
	tr := w.TraceWorld(lin.V3{Z: 10}, lin.V3{Z: -10}, lin.V3{}, lin.V3{})
	if tr.StartSolid || tr.AllSolid {
		t.Fatalf("unexpected solid flags: %+v", tr)
	}
	if tr.Ratio < 0.49 || tr.Ratio > 0.51 {
		t.Errorf("Ratio = %v, want ~0.5", tr.Ratio)
	}
	if tr.PlaneHit == nil || tr.PlaneHit.Normal.Z != 1 {
		t.Errorf("PlaneHit = %+v, want the z=0 floor plane", tr.PlaneHit)
	}
	if tr.EntityHit != WorldEntityID {
		t.Errorf("EntityHit = %d, want world (%d)", tr.EntityHit, WorldEntityID)
	}
	if tr.EndPoint.Z < -0.01 || tr.EndPoint.Z > 0.01 {
		t.Errorf("EndPoint.Z = %v, want ~0", tr.EndPoint.Z)
	}
}

func TestTraceWorldClearAboveFloor(t *testing.T) {
	w := newTestWorld(floorWorld())
	tr := w.TraceWorld(lin.V3{Z: 10}, lin.V3{X: 40, Z: 10}, lin.V3{}, lin.V3{})
	if tr.Ratio != 1 {
		t.Errorf("Ratio = %v, want 1", tr.Ratio)
	}
	if tr.EntityHit != NoEntityHit {
		t.Errorf("EntityHit = %d, want none (%d)", tr.EntityHit, NoEntityHit)
	}
}

func TestHullIndexForSize(t *testing.T) {
	cases := []struct {
		mins, maxs lin.V3
		want       int
	}{
		{lin.V3{}, lin.V3{}, 0},
		{lin.V3{X: -16, Y: -16, Z: -24}, lin.V3{X: 16, Y: 16, Z: 32}, 1},
		{lin.V3{X: -32, Y: -32, Z: -24}, lin.V3{X: 32, Y: 32, Z: 64}, 2},
	}
	for _, c := range cases {
		if got := hullIndexForSize(c.mins, c.maxs); got != c.want {
			t.Errorf("hullIndexForSize(extent %v) = %d, want %d", c.maxs.X-c.mins.X, got, c.want)
		}
	}
}

func TestMoveClipsToEntity(t *testing.T) {
	w := newTestWorld(openWorld())
	boxID := spawnBox(t, w, lin.V3{}, lin.V3{X: -8, Y: -8, Z: -8}, lin.V3{X: 8, Y: 8, Z: 8})

	tr := w.Move(lin.V3{X: -50}, lin.V3{X: 50}, lin.V3{}, lin.V3{}, TraceNormal, 5)
	if tr.EntityHit != boxID {
		t.Fatalf("EntityHit = %d, want %d", tr.EntityHit, boxID)
	}
	// hits the box's -x face at x=-8: 42 of 100 units traversed.
	if tr.Ratio < 0.41 || tr.Ratio > 0.43 {
		t.Errorf("Ratio = %v, want ~0.42", tr.Ratio)
	}
	if tr.EndPoint.X < -8.5 || tr.EndPoint.X > -7.5 {
		t.Errorf("EndPoint.X = %v, want ~-8", tr.EndPoint.X)
	}
}

func TestMovePicksNearerOfWorldAndEntity(t *testing.T) {
	w := newTestWorld(floorWorld())
	spawnBox(t, w, lin.V3{Z: -60}, lin.V3{X: -8, Y: -8, Z: -8}, lin.V3{X: 8, Y: 8, Z: 8})

	// the floor at z=0 is hit long before the box at z=-60.
	tr := w.Move(lin.V3{Z: 10}, lin.V3{Z: -100}, lin.V3{}, lin.V3{}, TraceNormal, 5)
	if tr.EntityHit != WorldEntityID {
		t.Errorf("EntityHit = %d, want world", tr.EntityHit)
	}
}

func TestMoveSkipsSelfAndOwnerChain(t *testing.T) {
	w := newTestWorld(openWorld())
	boxID := spawnBox(t, w, lin.V3{}, lin.V3{X: -8, Y: -8, Z: -8}, lin.V3{X: 8, Y: 8, Z: 8})

	moverID, mover, err := w.Arena.Spawn()
	if err != nil {
		t.Fatal(err)
	}
	if err := mover.PutEntityID("owner", boxID); err != nil {
		t.Fatal(err)
	}

	tr := w.Move(lin.V3{X: -50}, lin.V3{X: 50}, lin.V3{}, lin.V3{}, TraceNormal, moverID)
	if tr.EntityHit != NoEntityHit {
		t.Errorf("trace hit its own owner: EntityHit = %d", tr.EntityHit)
	}

	tr = w.Move(lin.V3{X: -50}, lin.V3{X: 50}, lin.V3{}, lin.V3{}, TraceNormal, boxID)
	if tr.EntityHit != NoEntityHit {
		t.Errorf("trace hit itself: EntityHit = %d", tr.EntityHit)
	}
}

func TestMissileTraceInflatesMonsterBounds(t *testing.T) {
	w := newTestWorld(openWorld())
	monsterID := spawnBox(t, w, lin.V3{}, lin.V3{X: -8, Y: -8, Z: -8}, lin.V3{X: 8, Y: 8, Z: 8})
	monster, err := w.Arena.Entity(monsterID)
	if err != nil {
		t.Fatal(err)
	}
	if err := monster.PutFloat("flags", FlagMonster); err != nil {
		t.Fatal(err)
	}

	// a line 18 units off the monster's center: outside the 8-unit box,
	// inside the missile-inflated 23-unit box.
	start, end := lin.V3{X: -50, Y: 18}, lin.V3{X: 50, Y: 18}
	if tr := w.Move(start, end, lin.V3{}, lin.V3{}, TraceNormal, 5); tr.EntityHit != NoEntityHit {
		t.Errorf("normal trace hit at y=18: EntityHit = %d", tr.EntityHit)
	}
	if tr := w.Move(start, end, lin.V3{}, lin.V3{}, TraceMissile, 5); tr.EntityHit != monsterID {
		t.Errorf("missile trace missed the inflated monster: EntityHit = %d", tr.EntityHit)
	}
}

func TestBrushEntityUsesSubmodelHull(t *testing.T) {
	// a world with a second submodel whose hull is the z<0 solid floor,
	// owned by a door-style push entity offset to z=-40.
	bw := floorWorld()
	bw.Models = append(bw.Models, bsp.Model{HullRoots: [4]int32{0, 0, 0, 0}})
	w := newTestWorld(bw)

	id, e, err := w.Arena.Spawn()
	if err != nil {
		t.Fatal(err)
	}
	if err := e.PutVector("origin", lin.V3{Z: -40}); err != nil {
		t.Fatal(err)
	}
	if err := e.PutFloat("solid", float64(SolidBsp)); err != nil {
		t.Fatal(err)
	}
	if err := e.PutFloat("move_type", float64(MovePush)); err != nil {
		t.Fatal(err)
	}
	if err := e.PutFloat("model_index", 1); err != nil {
		t.Fatal(err)
	}

	tr, err := w.TraceEntity(id, lin.V3{Z: -20}, lin.V3{Z: -60}, lin.V3{}, lin.V3{})
	if err != nil {
		t.Fatal(err)
	}
	// the brush's z=0 plane sits at world z=-40: half the sweep.
	if tr.Ratio < 0.49 || tr.Ratio > 0.51 {
		t.Errorf("Ratio = %v, want ~0.5", tr.Ratio)
	}
	if tr.EntityHit != id {
		t.Errorf("EntityHit = %d, want %d", tr.EntityHit, id)
	}
}

func TestMoveBoundsCoverSweep(t *testing.T) {
	lo, hi := moveBounds(lin.V3{X: -50}, lin.V3{X: 50}, lin.V3{X: -2, Y: -2, Z: -2}, lin.V3{X: 2, Y: 2, Z: 2})
	if lo.X > -53 || hi.X < 53 {
		t.Errorf("x bounds [%v,%v] do not cover the padded sweep", lo.X, hi.X)
	}
	if lo.Y > -3 || hi.Y < 3 {
		t.Errorf("y bounds [%v,%v] do not cover the mover box", lo.Y, hi.Y)
	}
}
