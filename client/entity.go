// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package client

import (
	"time"

	"github.com/gazed/qcore/math/lin"
)

// Effects is a bitflag set of per-entity visual effects driven by server
// updates.
type Effects uint8

const (
	EffectBrightField Effects = 1 << iota
	EffectMuzzleFlash
	EffectBrightLight
	EffectDimLight
)

// ModelFlags selects which trail/particle emitter a model spawns every
// frame it is visible.
type ModelFlags uint16

const (
	ModelFlagRotate ModelFlags = 1 << iota
	ModelFlagTrailBlood
	ModelFlagTrailSlightBlood
	ModelFlagTrailGreenTracer
	ModelFlagTrailRedTracer
	ModelFlagTrailRocket
	ModelFlagTrailGrenadeSmoke
	ModelFlagTrailVoreTracer
)

// snapshot is one sampled (origin, angles) pair stamped with the server
// message time it arrived in.
type snapshot struct {
	Origin   lin.V3
	Angles   lin.V3
	Velocity lin.V3
	MsgTime  time.Duration
}

// Entity is one slot of the client entity arena. A zero-value
// Entity is vacant (ModelID == 0).
type Entity struct {
	snap [2]snapshot

	Origin   lin.V3 // current interpolated position.
	Angles   lin.V3 // current interpolated orientation.
	Velocity lin.V3 // current interpolated velocity.

	ModelID    int32
	FrameID    int32
	SkinID     int32
	Colormap   int32
	ModelFlags ModelFlags
	Effects    Effects
	LightID    int32 // attached dynamic light, or -1.

	SyncBase time.Duration
	MsgTime  time.Duration // most recent server update time for this entity.

	ForceLink bool // set after a respawn, suppresses interpolation next frame.
}

// Live reports whether e currently represents a spawned entity that
// received an update in the latest server message.
func (e *Entity) Live(latestMsgTime time.Duration) bool {
	return e.ModelID != 0 && e.MsgTime == latestMsgTime
}

// Arena is the fixed-size, wire-id-indexed array of client entities.
// Slot 0 is reserved (never a valid wire id) and always vacant.
type Arena struct {
	slots []Entity
}

// NewArena allocates an arena with room for capacity wire ids (ids
// 0..capacity-1; id 0 is never used).
func NewArena(capacity int) *Arena {
	return &Arena{slots: make([]Entity, capacity)}
}

// Capacity returns the number of wire ids the arena can address.
func (a *Arena) Capacity() int { return len(a.slots) }

// Entity returns the slot for wire id, or (nil, false) if id is out of
// the arena's fixed range.
func (a *Arena) Entity(id int32) (*Entity, bool) {
	if id <= 0 || int(id) >= len(a.slots) {
		return nil, false
	}
	return &a.slots[id], true
}

// Update applies a fast server update for wire id at msgTime: it shifts
// snap[0] into snap[1] and records the new sample into snap[0].
// The caller is responsible for invoking this in ascending id order
// within a tick so inter-entity chain fields stay deterministic.
func (a *Arena) Update(id int32, origin, angles, velocity lin.V3, msgTime time.Duration) (*Entity, error) {
	e, ok := a.Entity(id)
	if !ok {
		return nil, newErr(ErrNoSuchEntity, "wire id %d out of arena range [0,%d)", id, len(a.slots))
	}
	e.snap[1] = e.snap[0]
	e.snap[0] = snapshot{Origin: origin, Angles: angles, Velocity: velocity, MsgTime: msgTime}
	e.MsgTime = msgTime
	return e, nil
}

// DespawnStale clears ModelID on every entity whose MsgTime does not
// match latestMsgTime, implicitly despawning entities the server stopped
// reporting.
func (a *Arena) DespawnStale(latestMsgTime time.Duration) {
	for i := range a.slots {
		e := &a.slots[i]
		if e.ModelID != 0 && e.MsgTime != latestMsgTime {
			e.ModelID = 0
		}
	}
}
