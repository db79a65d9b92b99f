// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package palette

import "testing"

func TestDecodeRejectsWrongSize(t *testing.T) {
	if _, err := Decode(make([]byte, 10)); err == nil {
		t.Fatal("expected error decoding undersized palette")
	}
}

func TestDecodeAndAt(t *testing.T) {
	data := make([]byte, Size*3)
	data[0], data[1], data[2] = 10, 20, 30 // entry 0
	data[3*5], data[3*5+1], data[3*5+2] = 1, 2, 3 // entry 5
	p, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	c := p.At(5)
	if c.R != 1 || c.G != 2 || c.B != 3 || c.A != 0xff {
		t.Errorf("At(5) = %+v", c)
	}
}

func TestTranslate(t *testing.T) {
	data := make([]byte, Size*3)
	data[3*9], data[3*9+1], data[3*9+2] = 100, 150, 200
	p, _ := Decode(data)
	img, err := p.Translate([]byte{9, 9, 9, 9}, 2, 2)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	c := img.RGBAAt(1, 1)
	if c.R != 100 || c.G != 150 || c.B != 200 {
		t.Errorf("pixel = %+v", c)
	}
}

func TestTranslateMismatchedSize(t *testing.T) {
	data := make([]byte, Size*3)
	p, _ := Decode(data)
	if _, err := p.Translate([]byte{1, 2, 3}, 2, 2); err == nil {
		t.Fatal("expected error for mismatched index count")
	}
}

func TestResample(t *testing.T) {
	data := make([]byte, Size*3)
	data[3*9], data[3*9+1], data[3*9+2] = 100, 150, 200
	p, _ := Decode(data)
	img, _ := p.Translate([]byte{9, 9, 9, 9}, 2, 2)

	big, err := Resample(img, 4, 4)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if b := big.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Fatalf("bounds = %v, want 4x4", b)
	}
	c := big.RGBAAt(3, 3)
	if c.R != 100 || c.G != 150 || c.B != 200 {
		t.Errorf("resampled pixel = %+v, want source color preserved", c)
	}

	if _, err := Resample(img, 0, 4); err == nil {
		t.Error("expected error for zero-width resample")
	}
}

func TestTransparentMask(t *testing.T) {
	mask := TransparentMask([]byte{0, 0xff, 12, 0xff})
	want := []bool{false, true, false, true}
	for i := range want {
		if mask[i] != want[i] {
			t.Errorf("mask[%d] = %v, want %v", i, mask[i], want[i])
		}
	}
}
