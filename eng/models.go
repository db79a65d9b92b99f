// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package eng

// models.go is the model table: every decoded world submodel and alias
// model indexed by id and by name. Client entities reference models by
// table id; brush submodels are addressable by their
// runtime "*N" names.

import (
	"fmt"
	"strings"

	"github.com/gazed/qcore/bsp"
	"github.com/gazed/qcore/mdl"
	"github.com/gazed/qcore/pak"
)

// ModelKind discriminates the two model families the table holds.
type ModelKind int

const (
	ModelBrush ModelKind = iota // a bsp submodel.
	ModelAlias                  // a keyframed triangular mesh.
)

// ModelRef is one table entry. Exactly one of the two payload fields is
// meaningful, selected by Kind.
type ModelRef struct {
	Name string
	Kind ModelKind

	World    *bsp.World // shared decoded world, for brush models.
	Submodel int32      // index into World.Models.

	Alias *mdl.Model // decoded alias model.
}

// ModelTable maps model ids (the ids carried by entity updates) to
// decoded models. Id 0 is reserved as "no model"; the table's first real
// entry is id 1.
type ModelTable struct {
	refs   []ModelRef
	byName map[string]int32
}

// NewModelTable allocates an empty table with the reserved id-0 slot.
func NewModelTable() *ModelTable {
	return &ModelTable{refs: make([]ModelRef, 1), byName: map[string]int32{}}
}

// Len returns the number of table slots, including the reserved slot 0.
func (t *ModelTable) Len() int { return len(t.refs) }

// Lookup returns the model at id, or false when id is 0 or out of range.
func (t *ModelTable) Lookup(id int32) (ModelRef, bool) {
	if id <= 0 || int(id) >= len(t.refs) {
		return ModelRef{}, false
	}
	return t.refs[id], true
}

// ID returns the id registered for name, or 0 if the name is unknown.
func (t *ModelTable) ID(name string) int32 { return t.byName[name] }

func (t *ModelTable) add(ref ModelRef) int32 {
	id := int32(len(t.refs))
	t.refs = append(t.refs, ref)
	t.byName[ref.Name] = id
	return id
}

// RegisterWorld decodes a world file and registers the worldmodel under
// its path plus every brush submodel under its "*N" name, returning the
// shared decoded world. Texture animation sequencing runs as part of the
// load.
func (t *ModelTable) RegisterWorld(name string, data []byte) (*bsp.World, error) {
	w, err := bsp.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("world %s: %w", name, err)
	}
	if err := bsp.SequenceTextures(w.Textures); err != nil {
		return nil, fmt.Errorf("world %s: %w", name, err)
	}
	t.add(ModelRef{Name: name, Kind: ModelBrush, World: w, Submodel: 0})
	for i := 1; i < len(w.Models); i++ {
		t.add(ModelRef{Name: fmt.Sprintf("*%d", i), Kind: ModelBrush, World: w, Submodel: int32(i)})
	}
	return w, nil
}

// RegisterAlias decodes an alias model file and registers it under name,
// returning its table id.
func (t *ModelTable) RegisterAlias(name string, data []byte) (int32, error) {
	m, err := mdl.Decode(data)
	if err != nil {
		return 0, fmt.Errorf("alias %s: %w", name, err)
	}
	return t.add(ModelRef{Name: name, Kind: ModelAlias, Alias: m}), nil
}

// LoadFromArchive registers a named file out of a PAK archive, picking
// the decoder from the path's extension (".bsp" or ".mdl").
func (t *ModelTable) LoadFromArchive(a *pak.Archive, path string) error {
	data, err := a.Bytes(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	switch {
	case strings.HasSuffix(path, ".bsp"):
		_, err = t.RegisterWorld(path, data)
	case strings.HasSuffix(path, ".mdl"):
		_, err = t.RegisterAlias(path, data)
	default:
		err = fmt.Errorf("load %s: unrecognized model extension", path)
	}
	return err
}
