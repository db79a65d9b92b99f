// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package bsp decodes the Quake-family world file format (a 15-lump
// binary blob version 29) into an immutable World and exposes the
// runtime operations the client and server cores need: the render and
// collision trees, potentially-visible-set decompression, and animated
// texture sequencing.
//
// Package bsp is provided as part of the qcore engine core.
package bsp

import (
	"time"

	"github.com/gazed/qcore/math/lin"
)

// Contents identifies the medium filling a leaf or collision subtree.
// Numeric values are fixed by the file format and the wire protocol.
type Contents int32

// Named content kinds. Values are fixed by the file format and the
// wire protocol.
const (
	ContentsEmpty      Contents = 1
	ContentsSolid      Contents = 2
	ContentsWater      Contents = 3
	ContentsSlime      Contents = 4
	ContentsLava       Contents = 5
	ContentsSky        Contents = 6
	ContentsOrigin     Contents = 7
	ContentsClip       Contents = 8
	ContentsCurrent0   Contents = 9
	ContentsCurrent90  Contents = 10
	ContentsCurrent180 Contents = 11
	ContentsCurrent270 Contents = 12
	ContentsCurrentUp  Contents = 13
	ContentsCurrentDn  Contents = 14
)

func (c Contents) String() string {
	switch c {
	case ContentsEmpty:
		return "Empty"
	case ContentsSolid:
		return "Solid"
	case ContentsWater:
		return "Water"
	case ContentsSlime:
		return "Slime"
	case ContentsLava:
		return "Lava"
	case ContentsSky:
		return "Sky"
	case ContentsOrigin:
		return "Origin"
	case ContentsClip:
		return "Clip"
	case ContentsCurrent0, ContentsCurrent90, ContentsCurrent180, ContentsCurrent270, ContentsCurrentUp, ContentsCurrentDn:
		return "Current"
	default:
		return "Unknown"
	}
}

// Axis is a hint for fast plane classification when the plane's normal is
// exactly axis-aligned.
type Axis int

const (
	AxisAny Axis = iota // not axis-aligned
	AxisX
	AxisY
	AxisZ
	AxisAnyX
	AxisAnyY
	AxisAnyZ
)

// Plane is an oriented splitting plane: points p with normal.Dot(p) == dist
// lie on the plane.
type Plane struct {
	Normal lin.V3
	Dist   float64
	Axis   Axis
}

// Edge is an unordered pair of indices into World.Vertices.
type Edge struct {
	V0, V1 uint16
}

// TexInfo maps world positions to texture space for one face.
// s = SVector.Dot(pos) + SOffset selects the diffuse texel column,
// t = TVector.Dot(pos) + TOffset the row.
type TexInfo struct {
	SVector  lin.V3
	SOffset  float64
	TVector  lin.V3
	TOffset  float64
	Texture  int32 // index into World.Textures, or -1 if unset.
	Special  uint32
}

// Side names which half-space of a face's plane the face's front faces.
type Side int

const (
	Front Side = iota
	Back
)

// TextureAnim links an animated texture frame to its sequence.
type TextureAnim struct {
	SequenceDuration time.Duration
	FrameStart       time.Duration
	FrameEnd         time.Duration
	Next             int32 // index into World.Textures of the following frame.
}

// Texture is one palette-indexed mipmap pyramid: four images, each half
// the width and height of the one before.
type Texture struct {
	Name      string
	Width     uint32
	Height    uint32
	Mip       [4][]byte // palette indices, row-major, Width>>i x Height>>i
	Animation *TextureAnim
}

// IsAnimated reports whether the texture's name marks it as one frame of
// an animated sequence (a leading '+').
func (t *Texture) IsAnimated() bool { return len(t.Name) > 0 && t.Name[0] == '+' }

// IsSky reports whether the texture's name marks it a sky surface.
func (t *Texture) IsSky() bool { return len(t.Name) >= 3 && t.Name[:3] == "sky" }

// IsWarp reports whether the texture's name marks it a liquid/warp surface.
func (t *Texture) IsWarp() bool { return len(t.Name) > 0 && t.Name[0] == '*' }

// Face is a planar polygon: its boundary is the edge loop found by
// walking World.EdgeList[EdgeListStart : EdgeListStart+EdgeCount].
type Face struct {
	PlaneIndex    int32
	Side          Side
	EdgeListStart int32
	EdgeCount     int32
	TexinfoIndex  int32
	LightStyleIDs [4]uint8
	LightmapOffset int32 // -1 if the face has no baked lightmap.
}

// HasLightmap reports whether the face has baked lightmap data.
func (f *Face) HasLightmap() bool { return f.LightmapOffset >= 0 }

// RenderChild is a sum type over the two kinds of children a render tree
// node may have: another internal Node, or a terminal Leaf. Exactly one of
// its two accessors, AsNode and AsLeaf, is meaningful at a time.
type RenderChild struct {
	leaf  bool
	index int32
}

// NewRenderNode builds a RenderChild referring to an internal node.
func NewRenderNode(index int32) RenderChild { return RenderChild{leaf: false, index: index} }

// NewRenderLeaf builds a RenderChild referring to a leaf.
func NewRenderLeaf(index int32) RenderChild { return RenderChild{leaf: true, index: index} }

// AsNode returns (index, true) if the child is an internal node.
func (c RenderChild) AsNode() (int32, bool) { return c.index, !c.leaf }

// AsLeaf returns (index, true) if the child is a leaf.
func (c RenderChild) AsLeaf() (int32, bool) { return c.index, c.leaf }

// RenderNode is an internal node of the drawing/visibility tree.
type RenderNode struct {
	PlaneIndex int32
	Children   [2]RenderChild // 0: front, 1: back.
	Min, Max   [3]int16       // bounding box, informational only.
}

// Leaf is a terminal region of the render tree.
type Leaf struct {
	Contents           Contents
	PVSOffset          int32 // -1 if this leaf has no compressed PVS data.
	Min, Max           [3]int16
	FaceListStart      int32
	FaceCount          int32
	AmbientSoundLevels [4]uint8
}

// HasPVS reports whether the leaf carries its own PVS offset.
func (l *Leaf) HasPVS() bool { return l.PVSOffset >= 0 }

// CollisionChild is a sum type over the two kinds of children a collision
// hull node may have: another internal Node, or a terminal Contents value.
type CollisionChild struct {
	isContents bool
	index      int32
	contents   Contents
}

// NewCollisionNode builds a CollisionChild referring to an internal node.
func NewCollisionNode(index int32) CollisionChild {
	return CollisionChild{isContents: false, index: index}
}

// NewCollisionContents builds a CollisionChild that terminates the subtree
// with the given contents.
func NewCollisionContents(c Contents) CollisionChild {
	return CollisionChild{isContents: true, contents: c}
}

// AsNode returns (index, true) if the child is an internal node.
func (c CollisionChild) AsNode() (int32, bool) { return c.index, !c.isContents }

// AsContents returns (contents, true) if the child terminates the subtree.
func (c CollisionChild) AsContents() (Contents, bool) { return c.contents, c.isContents }

// CollisionNode is an internal node of a collision hull.
type CollisionNode struct {
	PlaneIndex int32
	Children   [2]CollisionChild // 0: front, 1: back.
}

// Hull is one of the three coexisting collision hulls: 0 (point, derived
// from the render tree), 1 (human bounding box), 2 (monster bounding box).
// A hull's Nodes are shared by every submodel; each Model names its own
// entry point into them via Model.HullRoots[hullIndex].
type Hull struct {
	Nodes    []CollisionNode
	Min, Max lin.V3 // bounding box used to offset moving bodies.
}

// Model is a decoded submodel: model 0 is the worldmodel, models 1..N are
// brush submodels referenced at runtime by "*N" names.
type Model struct {
	Min, Max      lin.V3
	Origin        lin.V3
	HullRoots     [4]int32 // hull 3's root is unused, per file format.
	LeafCount     int32
	FaceListStart int32
	FaceCount     int32
}

// World is the complete decoded, immutable world: every cross-reference
// between its slices is an integer index (arena-and-index), never a
// pointer, so the whole structure can be shared freely by value-safe
// readers once built. World is freed (garbage collected) when the next
// map replaces it; nothing here is mutated after Decode returns.
type World struct {
	Entities   string // raw NUL-terminated entity definitions, see entities.go.
	Planes     []Plane
	Textures   []Texture
	Vertices   []lin.V3
	Visibility []byte
	RenderNodes []RenderNode
	TexInfo    []TexInfo
	Faces      []Face
	Lightmaps  []byte
	Leaves     []Leaf
	FaceList   []int32
	Edges      []Edge
	EdgeList   []int32
	Models     []Model

	// Hulls[0] is synthesized from RenderNodes; Hulls[1] and Hulls[2] are
	// decoded directly from the collision-node lump.
	Hulls [3]Hull
}
