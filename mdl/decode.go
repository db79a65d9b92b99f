// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package mdl

// decode.go is the alias model file decoder. Reads follow the bsp
// package's pattern - a fixed-size header struct read with
// encoding/binary over a bytes.Reader, explicit validation of
// magic/version before any frame data is touched.

import (
	"bytes"
	"encoding/binary"

	"github.com/gazed/qcore/math/lin"
)

const (
	fileMagic   = "IDPO"
	fileVersion = 6
	nameSize    = 16
)

const (
	tagSingle = 0
	tagGroup  = 1
)

// Decode parses a complete alias model file. Any structural problem - a
// bad magic or version, a negative count, a frame/skin missing its
// expected byte range - aborts the whole load with a DecodeError.
func Decode(data []byte) (*Model, error) {
	if len(data) < 4+4 {
		return nil, newErr(ErrRange, "file too small for header")
	}
	if string(data[0:4]) != fileMagic {
		return nil, newErr(ErrMagic, "bad magic %q, want %q", data[0:4], fileMagic)
	}
	version := int32(binary.LittleEndian.Uint32(data[4:8]))
	if version != fileVersion {
		return nil, newErr(ErrVersion, "unsupported version %d, want %d", version, fileVersion)
	}

	r := bytes.NewReader(data[8:])
	var hdr struct {
		ScaleX, ScaleY, ScaleZ    float32
		OrgX, OrgY, OrgZ          float32
		BoundingRadius            float32
		EyeX, EyeY, EyeZ          float32
		SkinCount                 int32
		SkinWidth                 int32
		SkinHeight                int32
		VertexCount               int32
		PolyCount                 int32
		FrameCount                int32
		SyncKind                  int32
		Flags                     int32
		AverageSize               float32
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, wrapErr(ErrIO, err, "header")
	}
	if hdr.SkinCount < 0 || hdr.SkinWidth < 0 || hdr.SkinHeight < 0 || hdr.VertexCount < 0 || hdr.PolyCount < 0 || hdr.FrameCount < 0 {
		return nil, newErr(ErrRange, "header has a negative count")
	}

	m := &Model{
		Scale:          lin.V3{X: float64(hdr.ScaleX), Y: float64(hdr.ScaleY), Z: float64(hdr.ScaleZ)},
		Origin:         lin.V3{X: float64(hdr.OrgX), Y: float64(hdr.OrgY), Z: float64(hdr.OrgZ)},
		BoundingRadius: float64(hdr.BoundingRadius),
		EyePosition:    lin.V3{X: float64(hdr.EyeX), Y: float64(hdr.EyeY), Z: float64(hdr.EyeZ)},
		SkinWidth:      hdr.SkinWidth,
		SkinHeight:     hdr.SkinHeight,
		Sync:           SyncKind(hdr.SyncKind),
		Flags:          hdr.Flags,
		AverageSize:    float64(hdr.AverageSize),
	}

	skinSize := int(hdr.SkinWidth) * int(hdr.SkinHeight)
	for i := int32(0); i < hdr.SkinCount; i++ {
		skin, err := decodeSkin(r, skinSize)
		if err != nil {
			return nil, wrapErr(ErrIO, err, "skin %d", i)
		}
		m.Skins = append(m.Skins, skin)
	}

	for i := int32(0); i < hdr.VertexCount; i++ {
		tc, err := decodeTexCoord(r)
		if err != nil {
			return nil, wrapErr(ErrIO, err, "texcoord %d", i)
		}
		m.TexCoords = append(m.TexCoords, tc)
	}

	for i := int32(0); i < hdr.PolyCount; i++ {
		tri, err := decodeTriangle(r)
		if err != nil {
			return nil, wrapErr(ErrIO, err, "triangle %d", i)
		}
		m.Triangles = append(m.Triangles, tri)
	}

	for i := int32(0); i < hdr.FrameCount; i++ {
		frame, err := decodeFrame(r, int(hdr.VertexCount))
		if err != nil {
			return nil, wrapErr(ErrIO, err, "frame %d", i)
		}
		m.Frames = append(m.Frames, frame)
	}

	if r.Len() != 0 {
		return nil, newErr(ErrRange, "%d trailing bytes after decoding all frames", r.Len())
	}
	return m, nil
}

func decodeSkin(r *bytes.Reader, skinSize int) (Skin, error) {
	tag, err := readTag(r)
	if err != nil {
		return Skin{}, err
	}
	if tag == tagSingle {
		indices := make([]byte, skinSize)
		if _, err := readFull(r, indices); err != nil {
			return Skin{}, err
		}
		return NewSingleSkin(indices), nil
	}
	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return Skin{}, err
	}
	if count < 0 {
		return Skin{}, newErr(ErrRange, "group skin has negative count %d", count)
	}
	cum := make([]float32, count)
	if err := binary.Read(r, binary.LittleEndian, &cum); err != nil {
		return Skin{}, err
	}
	images := make([][]byte, count)
	for i := range images {
		images[i] = make([]byte, skinSize)
		if _, err := readFull(r, images[i]); err != nil {
			return Skin{}, err
		}
	}
	return NewGroupSkin(cum, images), nil
}

func decodeTexCoord(r *bytes.Reader) (TexCoord, error) {
	var rec struct{ OnSeam, S, T int32 }
	if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
		return TexCoord{}, err
	}
	return TexCoord{OnSeam: rec.OnSeam != 0, S: rec.S, T: rec.T}, nil
}

func decodeTriangle(r *bytes.Reader) (Triangle, error) {
	var rec struct {
		FrontFacing int32
		Vertices    [3]int32
	}
	if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
		return Triangle{}, err
	}
	return Triangle{FrontFacing: rec.FrontFacing != 0, Vertices: rec.Vertices}, nil
}

func decodeFrame(r *bytes.Reader, vertexCount int) (Frame, error) {
	tag, err := readTag(r)
	if err != nil {
		return Frame{}, err
	}
	if tag == tagSingle {
		single, err := decodeSingleFrame(r, vertexCount)
		if err != nil {
			return Frame{}, err
		}
		return NewSingleFrame(single), nil
	}

	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return Frame{}, err
	}
	if count < 0 {
		return Frame{}, newErr(ErrRange, "group frame has negative count %d", count)
	}
	bboxMin, err := decodeVertex(r)
	if err != nil {
		return Frame{}, err
	}
	bboxMax, err := decodeVertex(r)
	if err != nil {
		return Frame{}, err
	}
	cum := make([]float32, count)
	if err := binary.Read(r, binary.LittleEndian, &cum); err != nil {
		return Frame{}, err
	}
	frames := make([]SingleFrame, count)
	for i := range frames {
		frames[i], err = decodeSingleFrame(r, vertexCount)
		if err != nil {
			return Frame{}, err
		}
	}
	return NewGroupFrame(GroupFrame{
		BBoxMin:         bboxMin.Position,
		BBoxMax:         bboxMax.Position,
		DurationCumFrac: cum,
		Frames:          frames,
	}), nil
}

func decodeSingleFrame(r *bytes.Reader, vertexCount int) (SingleFrame, error) {
	bboxMin, err := decodeVertex(r)
	if err != nil {
		return SingleFrame{}, err
	}
	bboxMax, err := decodeVertex(r)
	if err != nil {
		return SingleFrame{}, err
	}
	nameBuf := make([]byte, nameSize)
	if _, err := readFull(r, nameBuf); err != nil {
		return SingleFrame{}, err
	}
	verts := make([]Vertex, vertexCount)
	for i := range verts {
		verts[i], err = decodeVertex(r)
		if err != nil {
			return SingleFrame{}, err
		}
	}
	return SingleFrame{
		Name:     cString(nameBuf),
		BBoxMin:  bboxMin.Position,
		BBoxMax:  bboxMax.Position,
		Vertices: verts,
	}, nil
}

func decodeVertex(r *bytes.Reader) (Vertex, error) {
	var rec [4]byte
	if _, err := readFull(r, rec[:]); err != nil {
		return Vertex{}, err
	}
	return Vertex{Position: [3]uint8{rec[0], rec[1], rec[2]}, NormalIdx: rec[3]}, nil
}

func readTag(r *bytes.Reader) (int32, error) {
	var tag int32
	if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
		return 0, err
	}
	if tag != tagSingle && tag != tagGroup {
		return 0, newErr(ErrRange, "unrecognized frame/skin tag %d", tag)
	}
	return tag, nil
}

func readFull(r *bytes.Reader, buf []byte) (int, error) {
	n, err := r.Read(buf)
	if err != nil {
		return n, err
	}
	if n != len(buf) {
		return n, newErr(ErrRange, "short read: got %d bytes, want %d", n, len(buf))
	}
	return n, nil
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
