// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package eng

import (
	"testing"
	"time"

	"github.com/gazed/qcore/bsp"
	"github.com/gazed/qcore/math/lin"
	"github.com/gazed/qcore/server"
)

// twoLeafWorld is a hand-built decoded map: one x=0 splitting plane,
// leaf 0 (Empty, PVS "all visible") in front, leaf 1 (Solid) behind.
func twoLeafWorld() *bsp.World {
	return &bsp.World{
		Planes: []bsp.Plane{{Normal: lin.V3{X: 1}, Dist: 0, Axis: bsp.AxisX}},
		RenderNodes: []bsp.RenderNode{
			{PlaneIndex: 0, Children: [2]bsp.RenderChild{bsp.NewRenderLeaf(0), bsp.NewRenderLeaf(1)}},
		},
		Leaves: []bsp.Leaf{
			{Contents: bsp.ContentsEmpty, PVSOffset: 0, AmbientSoundLevels: [4]uint8{100, 0, 0, 0}},
			{Contents: bsp.ContentsSolid, PVSOffset: -1},
		},
		Visibility: []byte{0xFF},
		Models: []bsp.Model{{
			Min: lin.V3{X: -64, Y: -64, Z: -64},
			Max: lin.V3{X: 64, Y: 64, Z: 64},
		}},
	}
}

func TestNewEngineWiring(t *testing.T) {
	e := NewEngine(Entities(32))
	if e.Client == nil || e.Mixer == nil || e.Models == nil {
		t.Fatal("engine missing a core subsystem")
	}
	if e.Client.Arena.Capacity() != 32 {
		t.Errorf("arena capacity = %d, want 32", e.Client.Arena.Capacity())
	}
	if e.World != nil || e.Server != nil {
		t.Error("no map loaded yet: world state should be nil")
	}
}

func TestFrameWithoutMap(t *testing.T) {
	e := NewEngine()
	st := e.RunFrame(16*time.Millisecond, 1)
	if st.Leaf != -1 || st.PVS != nil {
		t.Errorf("frame without a map produced leaf %d / pvs %v", st.Leaf, st.PVS)
	}
}

func TestFrameLocatesCameraLeafAndPVS(t *testing.T) {
	e := NewEngine()
	e.World = twoLeafWorld()
	e.Server = server.NewWorld(e.World, server.NewArena(16, server.StandardTypeDescriptor()))

	// place the view entity in the front (empty) leaf.
	ent, err := e.Client.Arena.Update(1, lin.V3{X: 5}, lin.V3{}, lin.V3{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	ent.ModelID = 1
	e.Client.SetLatestMsgTime(0)

	st, err := e.Frame(16*time.Millisecond, 1)
	if err != nil {
		t.Fatal(err)
	}
	if st.Leaf != 0 {
		t.Errorf("camera leaf = %d, want 0", st.Leaf)
	}
	if len(st.PVS) != 1 || st.PVS[0] != 0xFF {
		t.Errorf("pvs = %v, want [0xFF]", st.PVS)
	}
	if len(st.Visible) != 1 || st.Visible[0] != 1 {
		t.Errorf("visible = %v, want [1]", st.Visible)
	}

	// the frame fed the empty leaf's ambient level into the mixer.
	if e.Mixer.Ambient(0).Volume <= 0 {
		t.Error("ambient channel did not fade toward the leaf level")
	}
}

func TestFrameLeafWithoutPVS(t *testing.T) {
	e := NewEngine()
	e.World = twoLeafWorld()

	ent, err := e.Client.Arena.Update(1, lin.V3{X: -5}, lin.V3{}, lin.V3{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	ent.ModelID = 1
	e.Client.SetLatestMsgTime(0)

	st, err := e.Frame(16*time.Millisecond, 1)
	if err != nil {
		t.Fatal(err)
	}
	if st.Leaf != 1 {
		t.Errorf("camera leaf = %d, want 1", st.Leaf)
	}
	if st.PVS != nil {
		t.Errorf("leaf without pvs offset should mean all-visible (nil), got %v", st.PVS)
	}
}

func TestModelTableBrushNames(t *testing.T) {
	tbl := NewModelTable()
	if id := tbl.ID("missing"); id != 0 {
		t.Errorf("unknown name resolved to id %d", id)
	}
	if _, ok := tbl.Lookup(0); ok {
		t.Error("id 0 is reserved and should not resolve")
	}
	w := twoLeafWorld()
	w.Models = append(w.Models, bsp.Model{}) // one brush submodel.
	tbl.refs = append(tbl.refs, ModelRef{Name: "maps/e1m1.bsp", Kind: ModelBrush, World: w, Submodel: 0})
	tbl.byName["maps/e1m1.bsp"] = 1
	tbl.refs = append(tbl.refs, ModelRef{Name: "*1", Kind: ModelBrush, World: w, Submodel: 1})
	tbl.byName["*1"] = 2

	if id := tbl.ID("*1"); id != 2 {
		t.Errorf(`ID("*1") = %d, want 2`, id)
	}
	ref, ok := tbl.Lookup(2)
	if !ok || ref.Submodel != 1 || ref.World != w {
		t.Errorf("Lookup(2) = (%+v, %v), want the *1 submodel", ref, ok)
	}
}
