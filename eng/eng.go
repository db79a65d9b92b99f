// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package eng is the cooperative single-threaded frame driver tying the
// client world state, the server world, and the decoded model table
// together. There is one owner of all game state; frame processing
// is a linear sequence with no suspension points, and runtime errors are
// logged and survived rather than aborting the run.
package eng

import (
	"log/slog"
	"math"
	"time"

	"github.com/gazed/qcore/bsp"
	"github.com/gazed/qcore/client"
	"github.com/gazed/qcore/math/lin"
	"github.com/gazed/qcore/server"
)

// Engine owns the mutable game state: the client entity arena and its
// pools, the sound mixer, the model table, and (after LoadMap) the
// shared decoded world and the server's spatial index.
type Engine struct {
	cfg Config

	Client *client.World
	Mixer  *client.Mixer
	Models *ModelTable

	// set by LoadMap, nil before the first map.
	World  *bsp.World
	Server *server.World
}

// NewEngine allocates the engine and its fixed-size arenas and pools
// from the configured capacities.
func NewEngine(attrs ...Attr) *Engine {
	cfg := configDefaults
	for _, attr := range attrs {
		attr(&cfg)
	}

	arena := client.NewArena(cfg.entities)
	statics := client.NewStaticEntities(cfg.statics)
	particles := client.NewParticlePool(cfg.particles, cfg.gravity)
	lights := client.NewLightPool(cfg.lights)
	beams := client.NewBeamPool(cfg.beams)

	cw := client.NewWorld(arena, statics, particles, lights, beams, cfg.beamSegs)
	cw.Interpolate = cfg.interpolate

	return &Engine{
		cfg:    cfg,
		Client: cw,
		Mixer:  client.NewMixer(cfg.channels),
		Models: NewModelTable(),
	}
}

// LoadMap decodes a world file, registers it and its brush submodels in
// the model table, and rebuilds the server world over it. The previous
// map's world (if any) is dropped and garbage collected once the last
// shared reference goes away.
func (e *Engine) LoadMap(name string, data []byte) error {
	w, err := e.Models.RegisterWorld(name, data)
	if err != nil {
		return err
	}
	e.World = w
	e.Server = server.NewWorld(w, server.NewArena(e.cfg.svEnts, server.StandardTypeDescriptor()))
	return nil
}

// FrameState is what one frame hands to the render and audio layers: the
// visible entity set, tessellated beam segments, and the camera leaf's
// visibility bitset.
type FrameState struct {
	Visible  []int32
	Segments []client.Segment
	Leaf     int32
	PVS      []byte // nil means every leaf is potentially visible.
}

// Frame runs one render frame: advance and
// interpolate entities, update effects and beams, locate the camera's
// leaf, decompress its PVS, and update the audio listener. A runtime
// error leaves already-updated in-frame state in place.
func (e *Engine) Frame(delta time.Duration, viewEntityID int32) (FrameState, error) {
	st := FrameState{Leaf: -1}
	st.Segments = e.Client.Advance(delta, viewEntityID)
	st.Visible = e.Client.Visible()

	if e.World == nil {
		return st, nil
	}

	origin := e.Client.ViewOrigin()
	st.Leaf = e.World.FindLeaf(origin)
	bits, ok, err := e.World.DecompressPVS(st.Leaf)
	if err != nil {
		return st, err
	}
	if ok {
		st.PVS = bits
	}

	var yaw float64
	if ve, found := e.Client.Arena.Entity(viewEntityID); found {
		yaw = ve.Angles.Y
	}
	e.Mixer.UpdateListener(origin, yawRight(yaw))
	if int(st.Leaf) < len(e.World.Leaves) {
		e.Mixer.UpdateAmbient(e.World.Leaves[st.Leaf].AmbientSoundLevels, delta)
	}
	e.Mixer.Spatialize()
	return st, nil
}

// RunFrame is Frame with the driver's error policy applied: the error is
// logged once and the engine carries on to the next frame.
func (e *Engine) RunFrame(delta time.Duration, viewEntityID int32) FrameState {
	st, err := e.Frame(delta, viewEntityID)
	if err != nil {
		slog.Error("frame", "error", err, "view_entity", viewEntityID)
	}
	return st
}

// yawRight is the listener's right vector for a yaw angle in degrees,
// with pitch and roll flattened out of the audio pan.
func yawRight(yawDeg float64) lin.V3 {
	rad := yawDeg * math.Pi / 180
	return lin.V3{X: math.Sin(rad), Y: -math.Cos(rad)}
}
