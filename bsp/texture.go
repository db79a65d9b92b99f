// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package bsp

import "time"

// texture.go sequences animated texture frames into circular linked lists
// and answers runtime "which frame is showing now" queries.

const frameDuration = 200 * time.Millisecond

// SequenceTextures scans textures for '+'-prefixed animation frame names
// and wires each sequence's frames into a circular list via
// Texture.Animation.Next. Names follow "+<digit-or-letter><tail>": digits
// 0-9 form the primary sequence, letters A-J/a-j form the alternate
// sequence, and two textures belong to the same sequence iff their tails
// match. A primary sequence missing an interior frame (a gap) is a fatal
// decode error; the alternate sequence is optional.
func SequenceTextures(textures []Texture) error {
	type seq struct {
		primary   [10]int32
		primaryOk [10]bool
		alt       [10]int32
		altOk     [10]bool
		primaryLen int
		altLen     int
	}
	seqs := map[string]*seq{}

	for i := range textures {
		t := &textures[i]
		if !t.IsAnimated() {
			continue
		}
		if len(t.Name) < 2 {
			return newErr(ErrRange, "texture %q: animation name too short", t.Name)
		}
		marker := t.Name[1]
		tail := t.Name[2:]
		s := seqs[tail]
		if s == nil {
			s = &seq{}
			seqs[tail] = s
		}
		switch {
		case marker >= '0' && marker <= '9':
			frame := int(marker - '0')
			s.primary[frame] = int32(i)
			s.primaryOk[frame] = true
			// Length tracks the highest frame index seen, not a count
			// of set slots, so a hole above index 0 still grows it.
			if frame+1 > s.primaryLen {
				s.primaryLen = frame + 1
			}
		case (marker >= 'A' && marker <= 'J') || (marker >= 'a' && marker <= 'j'):
			upper := marker
			if upper >= 'a' {
				upper -= 'a' - 'A'
			}
			frame := int(upper - 'A')
			s.alt[frame] = int32(i)
			s.altOk[frame] = true
			if frame+1 > s.altLen {
				s.altLen = frame + 1
			}
		default:
			return newErr(ErrRange, "texture %q: unrecognized animation marker %q", t.Name, marker)
		}
	}

	for tail, s := range seqs {
		if err := linkSequence(textures, s.primary[:], s.primaryOk[:], s.primaryLen, tail); err != nil {
			return err
		}
		if s.altLen > 0 {
			if err := linkSequence(textures, s.alt[:], s.altOk[:], s.altLen, tail); err != nil {
				return err
			}
		}
	}
	return nil
}

// linkSequence validates that frames[0:length] has no gaps, then wires
// Animation on each referenced texture into a circular list of that
// length, each frame occupying [i*frameDuration, (i+1)*frameDuration) of
// the full sequenceDuration = length*frameDuration cycle.
func linkSequence(textures []Texture, frames []int32, ok []bool, length int, tail string) error {
	sequenceDuration := time.Duration(length) * frameDuration
	for i := 0; i < length; i++ {
		if !ok[i] {
			return newErr(ErrRange, "animation sequence %q: missing frame %d", tail, i)
		}
		next := frames[(i+1)%length]
		textures[frames[i]].Animation = &TextureAnim{
			SequenceDuration: sequenceDuration,
			FrameStart:       time.Duration(i) * frameDuration,
			FrameEnd:         time.Duration(i+1) * frameDuration,
			Next:             next,
		}
	}
	return nil
}

// TextureFrameForTime returns the index of the texture frame showing at
// time t within an animation sequence that begins at start. It walks the
// circular Next chain from start, stopping at whichever frame's
// [FrameStart, FrameEnd) window contains t mod SequenceDuration. If start
// does not reference an animated texture, start is returned unchanged. A
// full-cycle walk without a match (a malformed chain) falls back to start
// rather than looping forever.
func TextureFrameForTime(textures []Texture, start int32, t time.Duration) int32 {
	anim := textures[start].Animation
	if anim == nil {
		return start
	}
	phase := t % anim.SequenceDuration
	if phase < 0 {
		phase += anim.SequenceDuration
	}
	idx := start
	for i := 0; i < len(textures); i++ {
		a := textures[idx].Animation
		if a == nil {
			return start
		}
		if phase >= a.FrameStart && phase < a.FrameEnd {
			return idx
		}
		idx = a.Next
		if idx == start {
			break
		}
	}
	return start
}
