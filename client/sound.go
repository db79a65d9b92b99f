// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package client

import (
	"time"

	"github.com/gazed/qcore/math/lin"
)

// sound.go is the listener/mixer model for spatial audio. Device output
// is an external collaborator; the mixer exposes only message-style
// start/stop/update calls that are atomic from the caller's view,
// and produces per-channel left/right volumes for the output layer to
// consume.

// ambientChannelCount matches the per-leaf ambient sound level array
// carried by the world's leaves.
const ambientChannelCount = 4

// ambientFadePerSec is how fast an ambient channel's volume steps toward
// its leaf-supplied target level, in level units per second.
const ambientFadePerSec = 100.0

// distScale converts an attenuation value into per-unit volume falloff.
const distScale = 1.0 / 1000.0

// Listener is the spatial reference frame sounds are mixed against: the
// view entity's position and its right vector.
type Listener struct {
	Origin lin.V3
	Right  lin.V3
}

// Channel is one playing sound: who emits it, what it plays, and the
// spatialized left/right volumes computed by the most recent Spatialize.
type Channel struct {
	EntityID    int32
	SoundID     int32
	Origin      lin.V3
	Volume      float64 // master volume, 0..1.
	Attenuation float64 // falloff rate; 0 plays everywhere at full volume.

	LeftVol  float64
	RightVol float64

	live bool
}

// AmbientChannel is one of the four leaf-driven ambient loops (water,
// sky, slime, lava). Its volume fades toward the current leaf's level.
type AmbientChannel struct {
	SoundID int32
	Volume  float64
}

// Mixer owns a fixed set of sound channels plus the four ambient
// channels. One caller mutates it per frame; spatialization reads the
// listener state set by the same caller.
type Mixer struct {
	listener Listener
	channels []Channel
	ambient  [ambientChannelCount]AmbientChannel
}

// NewMixer allocates a mixer with the given channel capacity.
func NewMixer(capacity int) *Mixer {
	return &Mixer{channels: make([]Channel, capacity)}
}

// UpdateListener moves the listener. Called once per frame from the view
// entity's freshly interpolated origin, before Spatialize.
func (m *Mixer) UpdateListener(origin, right lin.V3) {
	m.listener = Listener{Origin: origin, Right: right}
}

// Start begins playing soundID from entityID at origin. A sound already
// playing on the same (entity, sound) pair is restarted in place. Start
// returns false if every channel is busy; the sound is dropped.
func (m *Mixer) Start(entityID, soundID int32, origin lin.V3, volume, attenuation float64) bool {
	slot := -1
	for i := range m.channels {
		c := &m.channels[i]
		if c.live && c.EntityID == entityID && c.SoundID == soundID {
			slot = i
			break
		}
		if slot < 0 && !c.live {
			slot = i
		}
	}
	if slot < 0 {
		return false
	}
	m.channels[slot] = Channel{
		EntityID:    entityID,
		SoundID:     soundID,
		Origin:      origin,
		Volume:      volume,
		Attenuation: attenuation,
		live:        true,
	}
	return true
}

// Stop silences the (entity, sound) pair if it is playing.
func (m *Mixer) Stop(entityID, soundID int32) {
	for i := range m.channels {
		c := &m.channels[i]
		if c.live && c.EntityID == entityID && c.SoundID == soundID {
			c.live = false
			return
		}
	}
}

// UpdateOrigin re-anchors every channel owned by entityID, tracking a
// moving emitter.
func (m *Mixer) UpdateOrigin(entityID int32, origin lin.V3) {
	for i := range m.channels {
		c := &m.channels[i]
		if c.live && c.EntityID == entityID {
			c.Origin = origin
		}
	}
}

// UpdateAmbient fades the four ambient channels toward the levels of the
// leaf the listener currently occupies.
func (m *Mixer) UpdateAmbient(levels [ambientChannelCount]uint8, dt time.Duration) {
	step := ambientFadePerSec * dt.Seconds()
	for i := range m.ambient {
		a := &m.ambient[i]
		target := float64(levels[i])
		switch {
		case a.Volume < target:
			a.Volume = minf(a.Volume+step, target)
		case a.Volume > target:
			a.Volume = maxf(a.Volume-step, target)
		}
	}
}

// Ambient returns the current state of ambient channel i.
func (m *Mixer) Ambient(i int) AmbientChannel { return m.ambient[i] }

// Spatialize recomputes every live channel's left/right volume from the
// listener frame: volume falls off linearly with distance scaled by the
// channel's attenuation, and pans by the projection of the direction to
// the emitter onto the listener's right vector.
func (m *Mixer) Spatialize() {
	for i := range m.channels {
		c := &m.channels[i]
		if !c.live {
			continue
		}
		if c.EntityID != 0 && c.Attenuation > 0 {
			dir := lin.V3{
				X: c.Origin.X - m.listener.Origin.X,
				Y: c.Origin.Y - m.listener.Origin.Y,
				Z: c.Origin.Z - m.listener.Origin.Z,
			}
			dist := dir.Len() * c.Attenuation * distScale
			var dot float64
			if l := dir.Len(); l > 0 {
				dir.Div(l)
				dot = m.listener.Right.Dot(&dir)
			}
			c.RightVol = maxf(0, c.Volume*(1-dist)*(1+dot)*0.5)
			c.LeftVol = maxf(0, c.Volume*(1-dist)*(1-dot)*0.5)
		} else {
			// Listener-relative or unattenuated sounds play centered.
			c.RightVol = c.Volume
			c.LeftVol = c.Volume
		}
	}
}

// Channels returns the mixer's channel slots; vacant slots have zero
// volumes. Read-only from the output layer's perspective.
func (m *Mixer) Channels() []Channel { return m.channels }

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
