// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package server

import (
	"encoding/binary"
	"math"

	"github.com/gazed/qcore/math/lin"
)

// FieldType is the type tag of one entity field, per the bytecode VM's
// type table.
type FieldType int

const (
	FieldVoid FieldType = iota
	FieldStringID
	FieldFloat
	FieldVector
	FieldEntityID
	FieldFieldOffset
	FieldFunctionID
	FieldPointer
)

// Size returns the field's width in bytes within the entity's byte
// buffer.
func (t FieldType) Size() int {
	switch t {
	case FieldVoid:
		return 0
	case FieldVector:
		return 12
	default:
		return 4
	}
}

// FieldDescriptor names one field's type and byte offset within an
// entity's buffer.
type FieldDescriptor struct {
	Name   string
	Type   FieldType
	Offset int32
}

// TypeDescriptor is a runtime-supplied field-name -> field-type ->
// byte-offset table. Descriptors are built once at load time and
// shared read-only across every entity of that layout.
type TypeDescriptor struct {
	fields []FieldDescriptor
	byName map[string]int
	size   int32
}

// NewTypeDescriptor builds a descriptor from an ordered field list,
// assigning each field the next free byte offset.
func NewTypeDescriptor(fields []struct {
	Name string
	Type FieldType
}) *TypeDescriptor {
	td := &TypeDescriptor{byName: make(map[string]int, len(fields))}
	var offset int32
	for _, f := range fields {
		td.fields = append(td.fields, FieldDescriptor{Name: f.Name, Type: f.Type, Offset: offset})
		td.byName[f.Name] = len(td.fields) - 1
		offset += int32(f.Type.Size())
	}
	td.size = offset
	return td
}

// Lookup returns the descriptor for a named field.
func (td *TypeDescriptor) Lookup(name string) (FieldDescriptor, bool) {
	i, ok := td.byName[name]
	if !ok {
		return FieldDescriptor{}, false
	}
	return td.fields[i], true
}

// Size returns the total entity buffer size in bytes this descriptor
// requires.
func (td *TypeDescriptor) Size() int32 { return td.size }

// standardFields is the fixed prefix of well-known fields every server
// entity carries: movement state, bounds, combat counters, and the
// game-logic function references.
var standardFields = []struct {
	Name string
	Type FieldType
}{
	{"model_index", FieldFloat},
	{"origin", FieldVector},
	{"old_origin", FieldVector},
	{"velocity", FieldVector},
	{"angles", FieldVector},
	{"mins", FieldVector},
	{"maxs", FieldVector},
	{"abs_min", FieldVector},
	{"abs_max", FieldVector},
	{"size", FieldVector},
	{"solid", FieldFloat},
	{"move_type", FieldFloat},
	{"flags", FieldFloat},
	{"health", FieldFloat},
	{"frags", FieldFloat},
	{"ammo_shells", FieldFloat},
	{"ammo_nails", FieldFloat},
	{"ammo_rockets", FieldFloat},
	{"ammo_cells", FieldFloat},
	{"touch_fnc", FieldFunctionID},
	{"use_fnc", FieldFunctionID},
	{"think_fnc", FieldFunctionID},
	{"blocked_fnc", FieldFunctionID},
	{"owner", FieldEntityID},
	{"chain", FieldEntityID},
	{"class_name", FieldStringID},
	{"model_name", FieldStringID},
}

// StandardTypeDescriptor returns the shared descriptor for the standard
// entity field prefix.
func StandardTypeDescriptor() *TypeDescriptor { return NewTypeDescriptor(standardFields) }

// Solid classifies an entity's collision interaction.
type Solid int32

const (
	SolidNot Solid = iota
	SolidTrigger
	SolidBBox
	SolidBsp
)

// Entity is a mutable, type-descriptor-addressed byte buffer. The
// area-tree node it is currently linked into (areaID, -1 if unlinked)
// and the world leaves it overlaps support visibility and spatial
// queries.
type Entity struct {
	Type *TypeDescriptor
	Data []byte

	AreaID int32 // -1 if not linked into the area tree.

	// TouchedLeaves holds up to 16 world-leaf ids this entity currently
	// overlaps, used for PVS-driven visibility.
	TouchedLeaves []int32
}

// maxTouchedLeaves bounds the per-entity overlap set.
const maxTouchedLeaves = 16

// NewEntity allocates a zeroed entity of the given layout.
func NewEntity(td *TypeDescriptor) *Entity {
	return &Entity{Type: td, Data: make([]byte, td.Size()), AreaID: -1}
}

func (e *Entity) field(name string, want FieldType) (FieldDescriptor, error) {
	fd, ok := e.Type.Lookup(name)
	if !ok {
		return FieldDescriptor{}, newErr(ErrInvalidFieldAddr, "no such field %q", name)
	}
	if fd.Type != want {
		return FieldDescriptor{}, newErr(ErrInvalidFieldAddr, "field %q is %v, not %v", name, fd.Type, want)
	}
	return fd, nil
}

// GetFloat reads a float field by name.
func (e *Entity) GetFloat(name string) (float64, error) {
	fd, err := e.field(name, FieldFloat)
	if err != nil {
		return 0, err
	}
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(e.Data[fd.Offset:]))), nil
}

// PutFloat writes a float field by name.
func (e *Entity) PutFloat(name string, v float64) error {
	fd, err := e.field(name, FieldFloat)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(e.Data[fd.Offset:], math.Float32bits(float32(v)))
	return nil
}

// GetVector reads a vector field by name.
func (e *Entity) GetVector(name string) (lin.V3, error) {
	fd, err := e.field(name, FieldVector)
	if err != nil {
		return lin.V3{}, err
	}
	off := fd.Offset
	x := math.Float32frombits(binary.LittleEndian.Uint32(e.Data[off:]))
	y := math.Float32frombits(binary.LittleEndian.Uint32(e.Data[off+4:]))
	z := math.Float32frombits(binary.LittleEndian.Uint32(e.Data[off+8:]))
	return lin.V3{X: float64(x), Y: float64(y), Z: float64(z)}, nil
}

// PutVector writes a vector field by name.
func (e *Entity) PutVector(name string, v lin.V3) error {
	fd, err := e.field(name, FieldVector)
	if err != nil {
		return err
	}
	off := fd.Offset
	binary.LittleEndian.PutUint32(e.Data[off:], math.Float32bits(float32(v.X)))
	binary.LittleEndian.PutUint32(e.Data[off+4:], math.Float32bits(float32(v.Y)))
	binary.LittleEndian.PutUint32(e.Data[off+8:], math.Float32bits(float32(v.Z)))
	return nil
}

// GetEntityID reads an entity_id field by name.
func (e *Entity) GetEntityID(name string) (int32, error) {
	fd, err := e.field(name, FieldEntityID)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(e.Data[fd.Offset:])), nil
}

// PutEntityID writes an entity_id field by name.
func (e *Entity) PutEntityID(name string, v int32) error {
	fd, err := e.field(name, FieldEntityID)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(e.Data[fd.Offset:], uint32(v))
	return nil
}

// GetFunctionID reads a function_id field by name.
func (e *Entity) GetFunctionID(name string) (int32, error) {
	fd, err := e.field(name, FieldFunctionID)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(e.Data[fd.Offset:])), nil
}

// PutFunctionID writes a function_id field by name.
func (e *Entity) PutFunctionID(name string, v int32) error {
	fd, err := e.field(name, FieldFunctionID)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(e.Data[fd.Offset:], uint32(v))
	return nil
}

// GetStringID reads a string_id field by name.
func (e *Entity) GetStringID(name string) (int32, error) {
	fd, err := e.field(name, FieldStringID)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(e.Data[fd.Offset:])), nil
}

// PutStringID writes a string_id field by name.
func (e *Entity) PutStringID(name string, v int32) error {
	fd, err := e.field(name, FieldStringID)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(e.Data[fd.Offset:], uint32(v))
	return nil
}

// AddTouchedLeaf records a world leaf this entity overlaps, silently
// dropping it once maxTouchedLeaves is reached.
func (e *Entity) AddTouchedLeaf(leaf int32) {
	if len(e.TouchedLeaves) >= maxTouchedLeaves {
		return
	}
	e.TouchedLeaves = append(e.TouchedLeaves, leaf)
}

// Arena is the fixed-size, id-indexed store of server entities. Entity
// id 0 is the world entity and is always present but never linked into
// the area tree.
type Arena struct {
	entities []*Entity
	td       *TypeDescriptor
}

// NewArena allocates an arena of the given capacity, with entity 0
// pre-populated as the world entity.
func NewArena(capacity int, td *TypeDescriptor) *Arena {
	a := &Arena{entities: make([]*Entity, capacity), td: td}
	a.entities[0] = NewEntity(td)
	return a
}

// Entity returns the entity at id, or an error if id is out of range or
// the slot is free.
func (a *Arena) Entity(id int32) (*Entity, error) {
	if id < 0 || int(id) >= len(a.entities) || a.entities[id] == nil {
		return nil, newErr(ErrNoSuchEntity, "no entity with id %d", id)
	}
	return a.entities[id], nil
}

// Spawn installs a fresh entity into the first free slot (excluding id
// 0), returning its id.
func (a *Arena) Spawn() (int32, *Entity, error) {
	for i := 1; i < len(a.entities); i++ {
		if a.entities[i] == nil {
			e := NewEntity(a.td)
			a.entities[i] = e
			return int32(i), e, nil
		}
	}
	return 0, nil, newErr(ErrNoSuchEntity, "arena at capacity %d", len(a.entities))
}

// Free releases the entity at id back to the arena.
func (a *Arena) Free(id int32) error {
	if id <= 0 || int(id) >= len(a.entities) {
		return newErr(ErrNoSuchEntity, "cannot free id %d", id)
	}
	a.entities[id] = nil
	return nil
}
