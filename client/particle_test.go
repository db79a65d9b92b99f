// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package client

import (
	"testing"
	"time"

	"github.com/gazed/qcore/math/lin"
)

func countLive(pp *ParticlePool) int {
	n := 0
	pp.Live(func(*Particle) { n++ })
	return n
}

// A pool at capacity drops new particles silently rather than resizing.
func TestPoolAtCapacityDrops(t *testing.T) {
	pp := NewParticlePool(8, 800)
	pp.Explosion(lin.V3{}, 100, 0)
	if got := countLive(pp); got != 8 {
		t.Errorf("live particles = %d, want capped at 8", got)
	}
	// dropping must not have disturbed existing particles.
	pp.Field(lin.V3{X: 1}, 224, 0)
	if got := countLive(pp); got != 8 {
		t.Errorf("live particles after extra spawn = %d, want 8", got)
	}
}

func TestLinearIntegration(t *testing.T) {
	pp := NewParticlePool(4, 800)
	pp.spawn(Particle{
		Velocity:   lin.V3{X: 10},
		ExpireTime: time.Hour,
		Kind:       ParticleLinear,
	})
	pp.Update(100*time.Millisecond, 100*time.Millisecond)
	pp.Live(func(p *Particle) {
		if p.Position.X < 0.99 || p.Position.X > 1.01 {
			t.Errorf("Position.X = %v, want ~1 after 100ms at 10u/s", p.Position.X)
		}
		if p.Velocity.Z != 0 {
			t.Errorf("linear particle gained z-velocity %v", p.Velocity.Z)
		}
	})
}

func TestGravityKinds(t *testing.T) {
	pp := NewParticlePool(4, 800)
	pp.spawn(Particle{ExpireTime: time.Hour, Kind: ParticleGrav})
	pp.spawn(Particle{ExpireTime: time.Hour, Kind: ParticleSlowGrav})
	pp.Update(time.Second, time.Second)

	var vels []float64
	pp.Live(func(p *Particle) { vels = append(vels, p.Velocity.Z) })
	if len(vels) != 2 {
		t.Fatalf("got %d particles, want 2", len(vels))
	}
	if vels[0] != -800 {
		t.Errorf("Grav z-velocity = %v, want -800 after 1s", vels[0])
	}
	if vels[1] != -40 {
		t.Errorf("SlowGrav z-velocity = %v, want -40 after 1s", vels[1])
	}
}

func TestExpiredParticlesFreed(t *testing.T) {
	pp := NewParticlePool(4, 800)
	pp.spawn(Particle{ExpireTime: 10 * time.Millisecond})
	pp.Update(20*time.Millisecond, 10*time.Millisecond)
	if got := countLive(pp); got != 0 {
		t.Errorf("live particles = %d, want 0 after expiry", got)
	}
	// the freed slot is reusable.
	pp.spawn(Particle{ExpireTime: time.Hour})
	if got := countLive(pp); got != 1 {
		t.Errorf("live particles = %d, want 1 after respawn", got)
	}
}

func TestTrailSpacesParticlesAlongSegment(t *testing.T) {
	pp := NewParticlePool(256, 800)
	pp.Trail(lin.V3{}, lin.V3{X: 30}, 68, ParticleGrav, 0)
	n := countLive(pp)
	if n == 0 {
		t.Fatal("trail spawned no particles")
	}
	pp.Live(func(p *Particle) {
		if p.Position.X < -2 || p.Position.X > 32 {
			t.Errorf("trail particle at x=%v, outside the traced segment", p.Position.X)
		}
	})
}
