// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package server

import (
	"errors"
	"testing"

	"github.com/gazed/qcore/math/lin"
)

func TestFieldAccessRoundTrip(t *testing.T) {
	e := NewEntity(StandardTypeDescriptor())

	if err := e.PutFloat("health", 75); err != nil {
		t.Fatal(err)
	}
	if got, err := e.GetFloat("health"); err != nil || got != 75 {
		t.Errorf("GetFloat(health) = (%v, %v), want (75, nil)", got, err)
	}

	want := lin.V3{X: 1, Y: -2, Z: 3.5}
	if err := e.PutVector("velocity", want); err != nil {
		t.Fatal(err)
	}
	if got, err := e.GetVector("velocity"); err != nil || !got.Eq(&want) {
		t.Errorf("GetVector(velocity) = (%v, %v), want (%v, nil)", got, err, want)
	}

	if err := e.PutEntityID("owner", 12); err != nil {
		t.Fatal(err)
	}
	if got, err := e.GetEntityID("owner"); err != nil || got != 12 {
		t.Errorf("GetEntityID(owner) = (%v, %v), want (12, nil)", got, err)
	}
}

func TestFieldTypeMismatch(t *testing.T) {
	e := NewEntity(StandardTypeDescriptor())
	if _, err := e.GetFloat("origin"); err == nil {
		t.Error("reading a vector field as float should fail")
	}
	if _, err := e.GetVector("no_such_field"); err == nil {
		t.Error("reading an unknown field should fail")
	}
	var re *RuntimeError
	_, err := e.GetFloat("origin")
	if !errors.As(err, &re) || re.Kind != ErrInvalidFieldAddr {
		t.Errorf("error = %v, want RuntimeError kind ErrInvalidFieldAddr", err)
	}
}

func TestArenaSpawnFree(t *testing.T) {
	a := NewArena(4, StandardTypeDescriptor())

	if _, err := a.Entity(0); err != nil {
		t.Errorf("world entity 0 should always exist: %v", err)
	}

	id1, _, err := a.Spawn()
	if err != nil {
		t.Fatal(err)
	}
	id2, _, err := a.Spawn()
	if err != nil {
		t.Fatal(err)
	}
	if id1 == id2 || id1 == 0 || id2 == 0 {
		t.Errorf("spawn ids %d, %d should be distinct and nonzero", id1, id2)
	}

	if err := a.Free(id1); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Entity(id1); err == nil {
		t.Error("freed entity should not be resolvable")
	}
	reused, _, err := a.Spawn()
	if err != nil {
		t.Fatal(err)
	}
	if reused != id1 {
		t.Errorf("spawn after free = id %d, want reused slot %d", reused, id1)
	}
}

func TestEntFldAddrRoundTrip(t *testing.T) {
	const addrCount = 105
	cases := []EntFldAddr{
		{EntityID: 0, FieldAddr: 0},
		{EntityID: 0, FieldAddr: 104},
		{EntityID: 1, FieldAddr: 0},
		{EntityID: 37, FieldAddr: 64},
		{EntityID: 599, FieldAddr: 104},
	}
	for _, want := range cases {
		got, err := FromI32(want.ToI32(addrCount), addrCount)
		if err != nil {
			t.Fatalf("FromI32(%+v): %v", want, err)
		}
		if got != want {
			t.Errorf("round trip %+v -> %+v", want, got)
		}
	}
}

func TestEntFldAddrRejectsMisaligned(t *testing.T) {
	if _, err := FromI32(6, 105); err == nil {
		t.Error("misaligned encoded value should be rejected")
	}
	if _, err := FromI32(8, 0); err == nil {
		t.Error("zero addrCount should be rejected")
	}
}

func TestAddTouchedLeafCaps(t *testing.T) {
	e := NewEntity(StandardTypeDescriptor())
	for i := int32(0); i < 40; i++ {
		e.AddTouchedLeaf(i)
	}
	if len(e.TouchedLeaves) != maxTouchedLeaves {
		t.Errorf("touched leaves = %d, want capped at %d", len(e.TouchedLeaves), maxTouchedLeaves)
	}
}
