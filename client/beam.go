// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package client

import (
	"math"
	"math/rand"
	"time"

	"github.com/gazed/qcore/math/lin"
)

// segmentLength is the length of one tessellated beam segment.
const segmentLength = 30.0

// Beam is one slot of the (small, fixed-size) beam array.
type Beam struct {
	OwningEntityID int32
	ModelID        int32
	Start, End     lin.V3
	ExpireTime     time.Duration
	live           bool
}

// BeamPool is a small fixed-capacity beam array.
type BeamPool struct {
	beams []Beam
}

// NewBeamPool allocates a pool of the given capacity.
func NewBeamPool(capacity int) *BeamPool { return &BeamPool{beams: make([]Beam, capacity)} }

// Spawn installs a beam into a free slot, returning false if the pool is
// at capacity.
func (bp *BeamPool) Spawn(b Beam) bool {
	for i := range bp.beams {
		if !bp.beams[i].live {
			b.live = true
			bp.beams[i] = b
			return true
		}
	}
	return false
}

// Segment is one tessellated piece of a beam, ready to be pushed as a
// temporary render entity.
type Segment struct {
	ModelID    int32
	Position   lin.V3
	Yaw, Pitch float64 // degrees.
	Roll       float64 // degrees, sampled uniformly at random per segment.
}

// Update culls expired beams, re-anchors any beam owned by viewEntityID
// to viewOrigin, and tessellates every remaining live beam into
// segmentLength-unit segments, appending up to maxSegments total.
func (bp *BeamPool) Update(now time.Duration, viewEntityID int32, viewOrigin lin.V3, maxSegments int) []Segment {
	var out []Segment
	for i := range bp.beams {
		b := &bp.beams[i]
		if !b.live {
			continue
		}
		if now >= b.ExpireTime {
			b.live = false
			continue
		}
		if b.OwningEntityID == viewEntityID {
			b.Start = viewOrigin
		}
		out = append(out, tessellate(b, maxSegments-len(out))...)
		if len(out) >= maxSegments {
			return out[:maxSegments]
		}
	}
	return out
}

func tessellate(b *Beam, limit int) []Segment {
	if limit <= 0 {
		return nil
	}
	delta := lin.V3{X: b.End.X - b.Start.X, Y: b.End.Y - b.Start.Y, Z: b.End.Z - b.Start.Z}
	length := delta.Len()
	if length == 0 {
		return nil
	}
	yaw := math.Atan2(delta.Y, delta.X) * 180 / math.Pi
	pitch := math.Atan2(delta.Z, math.Hypot(delta.X, delta.Y)) * 180 / math.Pi

	count := int(length / segmentLength)
	if count < 1 {
		count = 1
	}
	if count > limit {
		count = limit
	}
	step := lin.V3{X: delta.X / float64(count), Y: delta.Y / float64(count), Z: delta.Z / float64(count)}

	segs := make([]Segment, count)
	pos := b.Start
	for i := 0; i < count; i++ {
		segs[i] = Segment{
			ModelID:  b.ModelID,
			Position: pos,
			Yaw:      yaw,
			Pitch:    pitch,
			Roll:     rand.Float64() * 360,
		}
		pos.X += step.X
		pos.Y += step.Y
		pos.Z += step.Z
	}
	return segs
}
