// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package client

import "github.com/gazed/qcore/math/lin"

// StaticEntity is a baseline entity placed once at map load (a torch,
// banner, or other fixture) with no per-tick server update.
type StaticEntity struct {
	Origin     lin.V3
	Angles     lin.V3
	ModelID    int32
	FrameID    int32
	SkinID     int32
	Colormap   int32
	ModelFlags ModelFlags
	Effects    Effects
}

// StaticEntities is a small fixed-capacity list of static entities,
// filled once at signon time.
type StaticEntities struct {
	entities []StaticEntity
}

// NewStaticEntities allocates an empty list with room for capacity
// entities.
func NewStaticEntities(capacity int) *StaticEntities {
	return &StaticEntities{entities: make([]StaticEntity, 0, capacity)}
}

// Spawn appends e to the list, returning ErrTooManyStaticEntities if the
// list is already at capacity.
func (s *StaticEntities) Spawn(e StaticEntity) error {
	if len(s.entities) >= cap(s.entities) {
		return newErr(ErrTooManyStaticEntities, "static entity list at capacity %d", cap(s.entities))
	}
	s.entities = append(s.entities, e)
	return nil
}

// Len returns the number of static entities currently spawned.
func (s *StaticEntities) Len() int { return len(s.entities) }

// At returns the static entity at index i.
func (s *StaticEntities) At(i int) *StaticEntity { return &s.entities[i] }

// Each calls fn for every static entity, in spawn order, for the same
// per-frame effect-flag processing dynamic entities receive.
func (s *StaticEntities) Each(fn func(*StaticEntity)) {
	for i := range s.entities {
		fn(&s.entities[i])
	}
}

// Reset clears the list, e.g. on disconnect/map change.
func (s *StaticEntities) Reset() {
	s.entities = s.entities[:0]
}
