// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package mdl decodes the Quake-family alias model file format (magic
// IDPO, version 6) into an immutable Model: a keyframed triangular mesh
// with skins, seam-aware texture coordinates, and quantized per-frame
// vertex positions.
package mdl

import "github.com/gazed/qcore/math/lin"

// SyncKind selects how an entity's sync_base phases this model's
// animation cycle at runtime (client concern; carried through unchanged).
type SyncKind int32

const (
	SyncKindLinear  SyncKind = 0
	SyncKindRandom  SyncKind = 1
)

// TexCoord is one vertex's position in skin space. OnSeam marks a vertex
// that lies on the mesh's UV seam: when the triangle referencing it is
// back-facing, S must be shifted by skinWidth/2 at render time.
type TexCoord struct {
	OnSeam bool
	S, T   int32
}

// Triangle is one face of the mesh. FrontFacing selects, together with a
// vertex's OnSeam flag, whether that vertex's S coordinate needs the
// seam shift described in TexCoord.
type Triangle struct {
	FrontFacing bool
	Vertices    [3]int32 // indices into Model.TexCoords / each Frame's Vertices.
}

// Vertex is one quantized per-frame vertex position plus its precomputed
// normal index (an index into the package-level Normals LUT).
type Vertex struct {
	Position  [3]uint8
	NormalIdx uint8
}

// Pos dequantizes v's position using the model's scale and origin:
// position = quantized*scale + origin.
func (v *Vertex) Pos(scale, origin lin.V3) lin.V3 {
	return lin.V3{
		X: float64(v.Position[0])*scale.X + origin.X,
		Y: float64(v.Position[1])*scale.Y + origin.Y,
		Z: float64(v.Position[2])*scale.Z + origin.Z,
	}
}

// Normal returns v's precomputed surface normal.
func (v *Vertex) Normal() lin.V3 { return Normals[v.NormalIdx] }

// SingleFrame is one keyframe: a name, an informational bounding box, and
// one vertex per mesh vertex.
type SingleFrame struct {
	Name     string
	BBoxMin  [3]uint8
	BBoxMax  [3]uint8
	Vertices []Vertex
}

// GroupFrame is a sequence of SingleFrames shown in order, each held for
// its own fraction of the group's total duration; fractions are
// cumulative and the last equals 1.0.
type GroupFrame struct {
	BBoxMin         [3]uint8
	BBoxMax         [3]uint8
	DurationCumFrac []float32
	Frames          []SingleFrame
}

// Frame is a sum type over the two kinds of frame record a model may
// carry: a single keyframe, or a time-sliced group of keyframes.
type Frame struct {
	group bool
	single SingleFrame
	groupFrame GroupFrame
}

// NewSingleFrame builds a Frame wrapping one keyframe.
func NewSingleFrame(f SingleFrame) Frame { return Frame{group: false, single: f} }

// NewGroupFrame builds a Frame wrapping a time-sliced sequence.
func NewGroupFrame(f GroupFrame) Frame { return Frame{group: true, groupFrame: f} }

// AsSingle returns (frame, true) if f is a single keyframe.
func (f Frame) AsSingle() (SingleFrame, bool) {
	if f.group {
		return SingleFrame{}, false
	}
	return f.single, true
}

// AsGroup returns (frame, true) if f is a time-sliced group.
func (f Frame) AsGroup() (GroupFrame, bool) {
	if !f.group {
		return GroupFrame{}, false
	}
	return f.groupFrame, true
}

// Skin is a sum type over the two kinds of skin record: one static
// palette-indexed image, or a time-sliced group of images.
type Skin struct {
	group      bool
	single     []byte // palette indices, skinWidth*skinHeight, row-major.
	groupCum   []float32
	groupSkins [][]byte
}

// NewSingleSkin builds a Skin wrapping one static image.
func NewSingleSkin(indices []byte) Skin { return Skin{group: false, single: indices} }

// NewGroupSkin builds a Skin wrapping a time-sliced sequence.
func NewGroupSkin(cumFrac []float32, images [][]byte) Skin {
	return Skin{group: true, groupCum: cumFrac, groupSkins: images}
}

// AsSingle returns (indices, true) if s is a static skin.
func (s Skin) AsSingle() ([]byte, bool) {
	if s.group {
		return nil, false
	}
	return s.single, true
}

// AsGroup returns (cumulative fractions, images, true) if s is a
// time-sliced group skin.
func (s Skin) AsGroup() ([]float32, [][]byte, bool) {
	if !s.group {
		return nil, nil, false
	}
	return s.groupCum, s.groupSkins, true
}

// ImageAt returns the skin image showing at fraction frac (in [0,1)) of a
// group skin's full cycle, or the static image for a single skin.
func (s Skin) ImageAt(frac float64) []byte {
	if !s.group {
		return s.single
	}
	for i, cum := range s.groupCum {
		if frac < float64(cum) {
			return s.groupSkins[i]
		}
	}
	if len(s.groupSkins) == 0 {
		return nil
	}
	return s.groupSkins[len(s.groupSkins)-1]
}

// Model is a complete decoded alias model: immutable and safe to share by
// pointer across every entity instancing it.
type Model struct {
	Scale          lin.V3
	Origin         lin.V3
	BoundingRadius float64
	EyePosition    lin.V3
	SkinWidth      int32
	SkinHeight     int32
	Sync           SyncKind
	Flags          int32
	AverageSize    float64

	Skins     []Skin
	TexCoords []TexCoord
	Triangles []Triangle
	Frames    []Frame
}
