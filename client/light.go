// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package client

import (
	"time"

	"github.com/gazed/qcore/math/lin"
)

// Light is one slot of the dynamic light pool.
type Light struct {
	Origin        lin.V3
	InitialRadius float64
	DecayPerSec   float64
	MinRadius     float64 // 0 if unset.
	ExpireTime    time.Duration
	spawnTime     time.Duration
	live          bool
}

// Radius returns the light's radius at time t: max(min_radius,
// initial_radius - decay_rate*(t-spawn_time)).
func (l *Light) Radius(t time.Duration) float64 {
	r := l.InitialRadius - l.DecayPerSec*(t-l.spawnTime).Seconds()
	if r < l.MinRadius {
		return l.MinRadius
	}
	return r
}

// LightPool is a fixed-capacity dynamic light pool.
type LightPool struct {
	lights []Light
}

// NewLightPool allocates a pool of the given capacity.
func NewLightPool(capacity int) *LightPool { return &LightPool{lights: make([]Light, capacity)} }

// Spawn installs a light into a free slot, returning its id (index into
// the pool) or -1 if the pool is full.
func (lp *LightPool) Spawn(origin lin.V3, initialRadius, decayPerSec, minRadius float64, now, expire time.Duration) int32 {
	for i := range lp.lights {
		if !lp.lights[i].live {
			lp.lights[i] = Light{
				Origin:        origin,
				InitialRadius: initialRadius,
				DecayPerSec:   decayPerSec,
				MinRadius:     minRadius,
				ExpireTime:    expire,
				spawnTime:     now,
				live:          true,
			}
			return int32(i)
		}
	}
	return -1
}

// Light returns the light at id, or (nil, false) if id is out of range or
// the slot is not live.
func (lp *LightPool) Light(id int32) (*Light, bool) {
	if id < 0 || int(id) >= len(lp.lights) || !lp.lights[id].live {
		return nil, false
	}
	return &lp.lights[id], true
}

// Collect frees every light whose radius at time t is <= 0 or whose
// expire_time has passed.
func (lp *LightPool) Collect(t time.Duration) {
	for i := range lp.lights {
		l := &lp.lights[i]
		if !l.live {
			continue
		}
		if t >= l.ExpireTime || l.Radius(t) <= 0 {
			l.live = false
		}
	}
}

// Live calls fn for every currently live light.
func (lp *LightPool) Live(fn func(id int32, l *Light)) {
	for i := range lp.lights {
		if lp.lights[i].live {
			fn(int32(i), &lp.lights[i])
		}
	}
}
