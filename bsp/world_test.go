// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package bsp

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"testing"

	"github.com/gazed/qcore/math/lin"
)

// buildWorldFile assembles a complete, valid world file: one x=0 plane,
// one render node with a front Empty leaf (PVS 0xFF) and a back Solid
// leaf, one triangular face, and a single worldmodel record.
func buildWorldFile(t *testing.T) []byte {
	t.Helper()
	le := binary.LittleEndian
	put := func(b *bytes.Buffer, vs ...any) {
		for _, v := range vs {
			if err := binary.Write(b, le, v); err != nil {
				t.Fatal(err)
			}
		}
	}

	lumps := make([][]byte, lumpCount)
	buf := func(i int) *bytes.Buffer {
		b := &bytes.Buffer{}
		lumps[i] = nil
		return b
	}
	set := func(i int, b *bytes.Buffer) { lumps[i] = b.Bytes() }

	b := buf(lumpEntities)
	b.WriteString("{\n\"classname\" \"worldspawn\"\n}\n\x00")
	set(lumpEntities, b)

	b = buf(lumpPlanes)
	put(b, float32(1), float32(0), float32(0), float32(0), int32(0))
	set(lumpPlanes, b)

	// textures lump left empty: no textures, no sequencing.

	b = buf(lumpVertices)
	put(b, float32(0), float32(0), float32(0))
	put(b, float32(16), float32(0), float32(0))
	put(b, float32(0), float32(16), float32(0))
	set(lumpVertices, b)

	b = buf(lumpVisibility)
	b.WriteByte(0xFF)
	set(lumpVisibility, b)

	b = buf(lumpRenderNodes)
	put(b, int32(0))                    // plane
	put(b, int16(-1), int16(-2))        // front leaf 0, back leaf 1
	put(b, int16(-64), int16(-64), int16(-64), int16(64), int16(64), int16(64))
	put(b, uint16(0), uint16(1)) // first face, face count
	set(lumpRenderNodes, b)

	b = buf(lumpTexInfo)
	put(b, float32(1), float32(0), float32(0), float32(0)) // s vector + offset
	put(b, float32(0), float32(1), float32(0), float32(0)) // t vector + offset
	put(b, int32(-1), uint32(0))                           // no texture, no flags
	set(lumpTexInfo, b)

	b = buf(lumpFaces)
	put(b, uint16(0), uint16(0)) // plane, side
	put(b, int32(0), int16(3))   // first edge, edge count
	put(b, uint16(0))            // texinfo
	put(b, [4]uint8{255, 255, 255, 255})
	put(b, int32(-1)) // no lightmap
	set(lumpFaces, b)

	// lightmaps lump left empty.

	b = buf(lumpCollisionNodes)
	put(b, int32(0))
	put(b, int16(-int16(ContentsEmpty)), int16(-int16(ContentsSolid)))
	set(lumpCollisionNodes, b)

	b = buf(lumpLeaves)
	put(b, int32(-int32(ContentsEmpty)), int32(0)) // contents, pvs offset
	put(b, int16(0), int16(-64), int16(-64), int16(64), int16(64), int16(64))
	put(b, uint16(0), uint16(1)) // face list start, count
	put(b, [4]uint8{0, 0, 0, 0})
	put(b, int32(-int32(ContentsSolid)), int32(-1))
	put(b, int16(-64), int16(-64), int16(-64), int16(0), int16(64), int16(64))
	put(b, uint16(0), uint16(0))
	put(b, [4]uint8{0, 0, 0, 0})
	set(lumpLeaves, b)

	b = buf(lumpFaceList)
	put(b, uint16(0))
	set(lumpFaceList, b)

	b = buf(lumpEdges)
	put(b, uint16(0), uint16(0)) // edge 0 is reserved
	put(b, uint16(0), uint16(1))
	put(b, uint16(1), uint16(2))
	put(b, uint16(2), uint16(0))
	set(lumpEdges, b)

	b = buf(lumpEdgeList)
	put(b, int32(1), int32(2), int32(3))
	set(lumpEdgeList, b)

	b = buf(lumpModels)
	put(b, float32(-64), float32(-64), float32(-64))
	put(b, float32(64), float32(64), float32(64))
	put(b, float32(0), float32(0), float32(0))
	put(b, [4]int32{0, 0, 0, 0})
	put(b, int32(2), int32(0), int32(1)) // leaf count, face list start, face count
	set(lumpModels, b)

	// assemble: header, directory, lump payloads.
	var file bytes.Buffer
	put(&file, int32(fileVersion))
	offset := int32(4 + lumpCount*8)
	for i := 0; i < lumpCount; i++ {
		put(&file, offset, int32(len(lumps[i])))
		offset += int32(len(lumps[i]))
	}
	for i := 0; i < lumpCount; i++ {
		file.Write(lumps[i])
	}
	return file.Bytes()
}

func TestDecodeWholeFile(t *testing.T) {
	w, err := Decode(buildWorldFile(t))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(w.Planes) != 1 || len(w.RenderNodes) != 1 || len(w.Leaves) != 2 || len(w.Models) != 1 {
		t.Fatalf("unexpected table sizes: %d planes, %d nodes, %d leaves, %d models",
			len(w.Planes), len(w.RenderNodes), len(w.Leaves), len(w.Models))
	}

	if got := w.FindLeaf(lin.V3{}); got != 0 {
		t.Errorf("FindLeaf(origin) = %d, want 0", got)
	}

	bits, ok, err := w.DecompressPVS(0)
	if err != nil || !ok {
		t.Fatalf("DecompressPVS(0) = (ok=%v, err=%v)", ok, err)
	}
	if len(bits) != 1 || bits[0] != 0xFF {
		t.Errorf("pvs = %v, want [0xFF]", bits)
	}

	// model bounds arrive expanded by one unit in every dimension.
	if w.Models[0].Min.X != -65 || w.Models[0].Max.X != 65 {
		t.Errorf("model bounds [%v,%v], want expanded to [-65,65]", w.Models[0].Min.X, w.Models[0].Max.X)
	}

	// hull 0 mirrors the render tree with leaves replaced by contents.
	if len(w.Hulls[0].Nodes) != len(w.RenderNodes) {
		t.Errorf("hull 0 has %d nodes, want %d", len(w.Hulls[0].Nodes), len(w.RenderNodes))
	}
	if c, isC := w.Hulls[0].Nodes[0].Children[1].AsContents(); !isC || c != ContentsSolid {
		t.Errorf("hull 0 back child = (%v, %v), want (Solid, true)", c, isC)
	}

	ents, err := ParseEntities(w.Entities)
	if err != nil {
		t.Fatalf("ParseEntities: %v", err)
	}
	if len(ents) != 1 || ents[0]["classname"] != "worldspawn" {
		t.Errorf("entities = %v, want one worldspawn", ents)
	}
}

// Decoding the same bytes twice yields structurally identical worlds.
func TestDecodeIsDeterministic(t *testing.T) {
	data := buildWorldFile(t)
	w1, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	w2, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(w1, w2) {
		t.Error("two decodes of the same file disagree")
	}
}

func TestDecodeRejectsTrailingLumpBytes(t *testing.T) {
	data := buildWorldFile(t)
	// grow the planes lump's declared size past its record multiple.
	o := 4 + lumpPlanes*8
	size := binary.LittleEndian.Uint32(data[o+4 : o+8])
	binary.LittleEndian.PutUint32(data[o+4:o+8], size+1)
	if _, err := Decode(data); err == nil {
		t.Fatal("expected error for a lump size off its record multiple")
	}
}
