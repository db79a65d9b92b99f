// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package bsp

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestRenderChildFromFileNegativeOneIsLeafZero(t *testing.T) {
	c := renderChildFromFile(-1)
	idx, isLeaf := c.AsLeaf()
	if !isLeaf || idx != 0 {
		t.Fatalf("renderChildFromFile(-1) = (%d, leaf=%v), want (0, true)", idx, isLeaf)
	}
}

func TestRenderChildFromFileNonNegativeIsNode(t *testing.T) {
	c := renderChildFromFile(7)
	idx, isNode := c.AsNode()
	if !isNode || idx != 7 {
		t.Fatalf("renderChildFromFile(7) = (%d, node=%v), want (7, true)", idx, isNode)
	}
}

func TestCollisionChildFromFileNegativeTwoIsSolid(t *testing.T) {
	c, err := collisionChildFromFile(-2)
	if err != nil {
		t.Fatalf("collisionChildFromFile(-2): %v", err)
	}
	contents, isContents := c.AsContents()
	if !isContents || contents != ContentsSolid {
		t.Fatalf("collisionChildFromFile(-2) = (%v, %v), want (Solid, true)", contents, isContents)
	}
}

func TestCollisionChildFromFileInvalidContentsIsFatal(t *testing.T) {
	if _, err := collisionChildFromFile(-1000); err == nil {
		t.Fatal("expected error for out-of-range contents code")
	}
}

// buildTexturesLump assembles a minimal textures lump: a count, an offset
// table (any -1 entries left unresolved), and one 16-byte-name + dims +
// 4 mip-offset record per resolved texture, each followed by its mip data
// (1x area for mip 0, matching Width=Height=8 for simplicity).
func buildTexturesLump(t *testing.T, names []string, placeholders map[int]bool) []byte {
	t.Helper()
	tableStart := int32(4 + len(names)*4) // offsets are relative to the lump start.
	offsets := make([]int32, len(names))
	var recs bytes.Buffer
	for i, name := range names {
		if placeholders[i] {
			offsets[i] = -1
			continue
		}
		offsets[i] = tableStart + int32(recs.Len())
		nameBuf := make([]byte, texNameSize)
		copy(nameBuf, name)
		recs.Write(nameBuf)
		binary.Write(&recs, binary.LittleEndian, uint32(8)) // width
		binary.Write(&recs, binary.LittleEndian, uint32(8)) // height
		headerSize := int32(texNameSize + 4 + 4 + 16)
		mipOfs := headerSize
		for m := 0; m < 4; m++ {
			binary.Write(&recs, binary.LittleEndian, uint32(mipOfs))
			mipOfs += int32((8 >> uint(m)) * (8 >> uint(m)))
		}
		for m := 0; m < 4; m++ {
			sz := (8 >> uint(m)) * (8 >> uint(m))
			recs.Write(make([]byte, sz))
		}
	}
	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, int32(len(names)))
	for _, o := range offsets {
		binary.Write(&out, binary.LittleEndian, o)
	}
	out.Write(recs.Bytes())
	return out.Bytes()
}

func TestDecodeTexturesPlaceholder(t *testing.T) {
	data := buildTexturesLump(t, []string{"wall", "missing"}, map[int]bool{1: true})
	textures, err := decodeTextures(data, lump{offset: 0, size: int32(len(data))})
	if err != nil {
		t.Fatalf("decodeTextures: %v", err)
	}
	if len(textures) != 2 {
		t.Fatalf("got %d textures, want 2", len(textures))
	}
	if textures[0].Name != "wall" {
		t.Errorf("textures[0].Name = %q, want wall", textures[0].Name)
	}
	if textures[1].Name != "" || textures[1].Width != 0 {
		t.Errorf("textures[1] should be an empty placeholder, got %+v", textures[1])
	}
}

func TestDecodeTexturesEmptyLump(t *testing.T) {
	textures, err := decodeTextures(nil, lump{offset: 0, size: 0})
	if err != nil {
		t.Fatalf("decodeTextures: %v", err)
	}
	if textures != nil {
		t.Errorf("expected nil for an empty textures lump, got %+v", textures)
	}
}

func TestAxisFromKind(t *testing.T) {
	cases := map[int32]Axis{0: AxisX, 1: AxisY, 2: AxisZ, 3: AxisAnyX, 4: AxisAnyY, 5: AxisAnyZ, 99: AxisAny}
	for kind, want := range cases {
		if got := axisFromKind(kind); got != want {
			t.Errorf("axisFromKind(%d) = %v, want %v", kind, got, want)
		}
	}
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	data := make([]byte, 4+lumpCount*8)
	binary.LittleEndian.PutUint32(data[0:4], 17)
	if _, err := Decode(data); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestDecodeRejectsTruncatedHeader(t *testing.T) {
	if _, err := Decode(make([]byte, 10)); err == nil {
		t.Fatal("expected error for truncated header")
	}
}

func TestDecodeRejectsLumpOutOfRange(t *testing.T) {
	data := make([]byte, 4+lumpCount*8)
	binary.LittleEndian.PutUint32(data[0:4], fileVersion)
	o := 4 + lumpPlanes*8
	binary.LittleEndian.PutUint32(data[o:o+4], 1000)
	binary.LittleEndian.PutUint32(data[o+4:o+8], 20)
	if _, err := Decode(data); err == nil {
		t.Fatal("expected error for an out-of-range lump")
	}
}
