// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package client

import (
	"math"
	"math/rand"
	"time"

	"github.com/gazed/qcore/math/lin"
)

// teleportThreshold is the positional delta past which an entity is
// snapped rather than interpolated; a jump that large is a teleport,
// not movement.
const teleportThreshold = 100.0

// maxServerDelta caps the interval between two snapshots used to derive
// lerp_factor; a wider gap is treated as exactly this value.
const maxServerDelta = 100 * time.Millisecond

// World is the per-frame driver over a client's entity arena, particle
// pool, light pool, static entity list, and beam pool: one Advance
// call runs the whole lerp/effect/beam pipeline for a render frame.
type World struct {
	Arena    *Arena
	Statics  *StaticEntities
	Particle *ParticlePool
	Light    *LightPool
	Beam     *BeamPool

	Interpolate bool

	Time        time.Duration
	LatestMsg   time.Duration
	prevMsg     time.Duration
	lerpFactor  float64
	viewEntity  int32
	viewOrigin  lin.V3
	visible     []int32
	beamLimit   int
}

// NewWorld wires an arena and its supporting pools into a frame driver.
func NewWorld(arena *Arena, statics *StaticEntities, particles *ParticlePool, lights *LightPool, beams *BeamPool, beamLimit int) *World {
	return &World{
		Arena:       arena,
		Statics:     statics,
		Particle:    particles,
		Light:       lights,
		Beam:        beams,
		Interpolate: true,
		beamLimit:   beamLimit,
	}
}

// Advance runs one render frame's worth of update:
// stale-entity despawn, time advance, lerp_factor, per-entity
// interpolation and effect processing, static-entity effects, and beam
// tessellation.
func (w *World) Advance(frameDelta time.Duration, viewEntityID int32) []Segment {
	w.Arena.DespawnStale(w.LatestMsg)

	w.Time += frameDelta
	w.viewEntity = viewEntityID

	w.computeLerpFactor()

	w.visible = w.visible[:0]
	for i := range w.Arena.slots {
		id := int32(i)
		e := &w.Arena.slots[i]
		if !e.Live(w.LatestMsg) {
			continue
		}
		w.updateEntity(id, e)
		w.visible = append(w.visible, id)
		if id == viewEntityID {
			w.viewOrigin = e.Origin
		}
	}

	for i := range w.Arena.slots {
		w.Arena.slots[i].ForceLink = false
	}

	w.Statics.Each(func(s *StaticEntity) { w.applyEffects(s.Effects, s.Origin) })

	// light and particle updates run after entity updates; beam
	// tessellation runs last since it needs the fresh view origin.
	w.Light.Collect(w.Time)
	w.Particle.Update(w.Time, frameDelta)

	return w.Beam.Update(w.Time, w.viewEntity, w.viewOrigin, w.beamLimit)
}

// Visible returns the wire ids added to the current frame's visible set
// by the most recent Advance call.
func (w *World) Visible() []int32 { return w.visible }

// ViewOrigin returns the view entity's origin as of the most recent
// Advance call.
func (w *World) ViewOrigin() lin.V3 { return w.viewOrigin }

func (w *World) computeLerpFactor() {
	if !w.Interpolate {
		w.lerpFactor = 1
		w.Time = w.LatestMsg
		return
	}

	msg0 := w.LatestMsg
	msg1 := w.prevMsg
	serverDelta := msg0 - msg1
	if serverDelta > maxServerDelta {
		msg1 = msg0 - maxServerDelta
		serverDelta = maxServerDelta
	}
	if serverDelta <= 0 {
		w.lerpFactor = 1
		w.Time = msg0
		return
	}

	f := float64(w.Time-msg1) / float64(serverDelta)
	switch {
	case f < 0:
		f = 0
		w.Time = msg1
	case f > 1:
		f = 1
		w.Time = msg0
	}
	w.lerpFactor = f
}

// SetLatestMsgTime records a newly-received server message time, shifting
// the previous latest into prevMsg for the next lerp_factor computation.
func (w *World) SetLatestMsgTime(t time.Duration) {
	w.prevMsg = w.LatestMsg
	w.LatestMsg = t
}

func (w *World) updateEntity(id int32, e *Entity) {
	s0, s1 := e.snap[0], e.snap[1]
	f := w.lerpFactor

	e.Velocity = lin.V3{
		X: f*s0.Velocity.X + (1-f)*s1.Velocity.X,
		Y: f*s0.Velocity.Y + (1-f)*s1.Velocity.Y,
		Z: f*s0.Velocity.Z + (1-f)*s1.Velocity.Z,
	}

	delta := lin.V3{X: s0.Origin.X - s1.Origin.X, Y: s0.Origin.Y - s1.Origin.Y, Z: s0.Origin.Z - s1.Origin.Z}
	if e.ForceLink || delta.Len() > teleportThreshold {
		e.Origin = s0.Origin
		e.Angles = s0.Angles
	} else {
		e.Origin = lin.V3{
			X: s1.Origin.X + f*delta.X,
			Y: s1.Origin.Y + f*delta.Y,
			Z: s1.Origin.Z + f*delta.Z,
		}
		e.Angles = lin.V3{
			X: lerpAngle(s1.Angles.X, s0.Angles.X, f),
			Y: lerpAngle(s1.Angles.Y, s0.Angles.Y, f),
			Z: lerpAngle(s1.Angles.Z, s0.Angles.Z, f),
		}
	}

	if e.ModelFlags&ModelFlagRotate != 0 {
		e.Angles.Y = math.Mod(100*w.Time.Seconds(), 360)
	}

	w.applyEffects(e.Effects, e.Origin)
	w.applyTrail(e.ModelFlags, s1.Origin, e.Origin)
}

// lerpAngle interpolates from a to b by f, taking the shorter path
// around a 360° wrap.
func lerpAngle(a, b, f float64) float64 {
	delta := math.Mod(b-a+540, 360) - 180
	return a + f*delta
}

func (w *World) applyEffects(fx Effects, origin lin.V3) {
	if fx&EffectBrightField != 0 {
		w.Particle.Field(origin, 224, w.Time)
	}
	if fx&EffectMuzzleFlash != 0 {
		w.Light.Spawn(origin, randRange(200, 232), 400, 0, w.Time, w.Time+100*time.Millisecond)
	}
	if fx&EffectBrightLight != 0 {
		w.Light.Spawn(origin, randRange(400, 432), 400, 0, w.Time, w.Time+100*time.Millisecond)
	}
	if fx&EffectDimLight != 0 {
		w.Light.Spawn(origin, randRange(200, 232), 400, 0, w.Time, w.Time+100*time.Millisecond)
	}
}

func (w *World) applyTrail(flags ModelFlags, prevOrigin, origin lin.V3) {
	switch {
	case flags&ModelFlagTrailBlood != 0:
		w.Particle.Trail(prevOrigin, origin, 68, ParticleGrav, w.Time)
	case flags&ModelFlagTrailSlightBlood != 0:
		if rand.Intn(4) == 0 {
			w.Particle.Trail(prevOrigin, origin, 68, ParticleGrav, w.Time)
		}
	case flags&ModelFlagTrailGreenTracer != 0:
		w.Particle.Trail(prevOrigin, origin, 52, ParticleGrav, w.Time)
	case flags&ModelFlagTrailRedTracer != 0:
		w.Particle.Trail(prevOrigin, origin, 230, ParticleGrav, w.Time)
	case flags&ModelFlagTrailRocket != 0:
		w.Particle.Trail(prevOrigin, origin, 224, ParticleFast, w.Time)
		w.Light.Spawn(origin, 200, 400, 0, w.Time, w.Time+100*time.Millisecond)
	case flags&ModelFlagTrailGrenadeSmoke != 0:
		w.Particle.Trail(prevOrigin, origin, 0, ParticleGrav, w.Time)
	case flags&ModelFlagTrailVoreTracer != 0:
		w.Particle.Trail(prevOrigin, origin, 9, ParticleGrav, w.Time)
	}
}
