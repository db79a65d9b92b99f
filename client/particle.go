// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package client

import (
	"math/rand"
	"time"

	"github.com/gazed/qcore/math/lin"
)

// ParticleKind selects a particle's per-tick physics.
type ParticleKind int

const (
	ParticleLinear ParticleKind = iota
	ParticleGrav
	ParticleSlowGrav
	ParticleFast
)

// Particle is one slot of the particle pool.
type Particle struct {
	Position   lin.V3
	Velocity   lin.V3
	ColorIndex uint8
	SpawnTime  time.Duration
	ExpireTime time.Duration
	Kind       ParticleKind
	live       bool
}

// ParticlePool is a fixed-capacity particle pool reused in place; once
// full, new particles are dropped silently.
type ParticlePool struct {
	particles []Particle
	gravity   float64 // sv_gravity, units/s^2.
}

// NewParticlePool allocates a pool of the given capacity. gravity is the
// world's sv_gravity value used by Grav/SlowGrav kinds.
func NewParticlePool(capacity int, gravity float64) *ParticlePool {
	return &ParticlePool{particles: make([]Particle, capacity), gravity: gravity}
}

// spawn finds a free slot and installs p into it, returning false if the
// pool is at capacity.
func (pp *ParticlePool) spawn(p Particle) bool {
	for i := range pp.particles {
		if !pp.particles[i].live {
			p.live = true
			pp.particles[i] = p
			return true
		}
	}
	return false
}

// Update advances every live particle by dt: position integrates
// velocity, Grav/SlowGrav kinds additionally decrement z-velocity by
// gravity*dt and 0.05*gravity*dt respectively, and particles whose
// expire_time has passed are freed.
func (pp *ParticlePool) Update(now time.Duration, dt time.Duration) {
	dtSec := dt.Seconds()
	for i := range pp.particles {
		p := &pp.particles[i]
		if !p.live {
			continue
		}
		if now >= p.ExpireTime {
			p.live = false
			continue
		}
		switch p.Kind {
		case ParticleGrav:
			p.Velocity.Z -= pp.gravity * dtSec
		case ParticleSlowGrav:
			p.Velocity.Z -= 0.05 * pp.gravity * dtSec
		}
		p.Position.X += p.Velocity.X * dtSec
		p.Position.Y += p.Velocity.Y * dtSec
		p.Position.Z += p.Velocity.Z * dtSec
	}
}

// Live calls fn for every currently live particle.
func (pp *ParticlePool) Live(fn func(*Particle)) {
	for i := range pp.particles {
		if pp.particles[i].live {
			fn(&pp.particles[i])
		}
	}
}

// explosionColorLo and explosionColorHi are the standard Quake explosion
// palette range (fire oranges/yellows), used by Explosion; ColoredExplosion
// lets the caller supply a different range.
const (
	explosionColorLo uint8 = 0x74
	explosionColorHi uint8 = 0x7c
)

// Explosion spawns the standard colored sphere burst of n particles
// around origin.
func (pp *ParticlePool) Explosion(origin lin.V3, n int, now time.Duration) {
	pp.ColoredExplosion(origin, n, explosionColorLo, explosionColorHi, now)
}

// ColoredExplosion spawns n gravity-affected particles around origin,
// each with a random velocity and a color sampled from [colorLo, colorHi).
func (pp *ParticlePool) ColoredExplosion(origin lin.V3, n int, colorLo, colorHi uint8, now time.Duration) {
	span := int(colorHi) - int(colorLo)
	for i := 0; i < n; i++ {
		color := colorLo
		if span > 0 {
			color += uint8(rand.Intn(span))
		}
		pp.spawn(Particle{
			Position:   origin,
			Velocity:   lin.V3{X: randRange(-256, 256), Y: randRange(-256, 256), Z: randRange(-256, 256)},
			ColorIndex: color,
			SpawnTime:  now,
			ExpireTime: now + 500*time.Millisecond + randDuration(500*time.Millisecond),
			Kind:       ParticleGrav,
		})
	}
}

// TarExplosion spawns a slow-moving dark burst, used for tarbaby deaths.
func (pp *ParticlePool) TarExplosion(origin lin.V3, n int, now time.Duration) {
	for i := 0; i < n; i++ {
		pp.spawn(Particle{
			Position:   origin,
			Velocity:   lin.V3{X: randRange(-64, 64), Y: randRange(-64, 64), Z: randRange(-64, 64)},
			ColorIndex: 0,
			SpawnTime:  now,
			ExpireTime: now + time.Second + randDuration(time.Second),
			Kind:       ParticleSlowGrav,
		})
	}
}

// LavaSplash spawns an upward-biased burst used for lava surface impacts.
func (pp *ParticlePool) LavaSplash(origin lin.V3, n int, now time.Duration) {
	for i := 0; i < n; i++ {
		pp.spawn(Particle{
			Position:   lin.V3{X: origin.X + randRange(-16*8, 16*8), Y: origin.Y + randRange(-16*8, 16*8), Z: origin.Z},
			Velocity:   lin.V3{X: randRange(-50, 50), Y: randRange(-50, 50), Z: 50 + randRange(0, 64)},
			ColorIndex: 224,
			SpawnTime:  now,
			ExpireTime: now + 2*time.Second + randDuration(time.Second),
			Kind:       ParticleGrav,
		})
	}
}

// TeleportWarp spawns the box-shaped particle lattice used when an entity
// teleports.
func (pp *ParticlePool) TeleportWarp(origin lin.V3, now time.Duration) {
	for x := -16; x < 16; x += 4 {
		for y := -16; y < 16; y += 4 {
			for z := -24; z < 32; z += 4 {
				pp.spawn(Particle{
					Position:   lin.V3{X: origin.X + float64(x), Y: origin.Y + float64(y), Z: origin.Z + float64(z)},
					Velocity:   lin.V3{X: randRange(-4, 4) * 15, Y: randRange(-4, 4) * 15, Z: randRange(-4, 4) * 15},
					ColorIndex: uint8(112 + rand.Intn(4)),
					SpawnTime:  now,
					ExpireTime: now + 300*time.Millisecond,
					Kind:       ParticleSlowGrav,
				})
			}
		}
	}
}

// Impact spawns a small directional burst for a projectile hit, colored
// from [colorLo, colorHi).
func (pp *ParticlePool) Impact(origin, dir lin.V3, n int, colorLo, colorHi uint8, now time.Duration) {
	for i := 0; i < n; i++ {
		color := colorLo
		if span := int(colorHi) - int(colorLo); span > 0 {
			color += uint8(rand.Intn(span))
		}
		pp.spawn(Particle{
			Position:   origin,
			Velocity:   lin.V3{X: dir.X*20 + randRange(-16, 16), Y: dir.Y*20 + randRange(-16, 16), Z: dir.Z*20 + randRange(-16, 16)},
			ColorIndex: color,
			SpawnTime:  now,
			ExpireTime: now + 300*time.Millisecond,
			Kind:       ParticleGrav,
		})
	}
}

// Field spawns one continuous-emitter particle for an entity effect
// field (e.g. a torch flame), called once per frame the field is active.
func (pp *ParticlePool) Field(origin lin.V3, colorIndex uint8, now time.Duration) {
	pp.spawn(Particle{
		Position:   origin,
		Velocity:   lin.V3{X: randRange(-1, 1) * 5, Y: randRange(-1, 1) * 5, Z: 20 + randRange(0, 20)},
		ColorIndex: colorIndex,
		SpawnTime:  now,
		ExpireTime: now + 100*time.Millisecond,
		Kind:       ParticleLinear,
	})
}

// Trail spawns particles along the segment [start,end], spaced 3 units
// apart, for the given model-flag trail kind.
func (pp *ParticlePool) Trail(start, end lin.V3, colorIndex uint8, kind ParticleKind, now time.Duration) {
	delta := lin.V3{X: end.X - start.X, Y: end.Y - start.Y, Z: end.Z - start.Z}
	length := delta.Len()
	if length == 0 {
		return
	}
	step := lin.V3{X: delta.X / length * 3, Y: delta.Y / length * 3, Z: delta.Z / length * 3}
	steps := int(length / 3)
	p := start
	for i := 0; i < steps; i++ {
		pp.spawn(Particle{
			Position:   p,
			Velocity:   lin.V3{},
			ColorIndex: colorIndex,
			SpawnTime:  now,
			ExpireTime: now + time.Second,
			Kind:       kind,
		})
		p.X += step.X
		p.Y += step.Y
		p.Z += step.Z
	}
}

func randRange(lo, hi float64) float64 { return lo + rand.Float64()*(hi-lo) }
func randDuration(max time.Duration) time.Duration {
	return time.Duration(rand.Int63n(int64(max) + 1))
}
