// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package server

// EntFldAddr is the bytecode VM's encoded addressing of one entity's
// field: (entity_id, field_addr) folded into a single 32-bit integer the
// VM passes around as an opaque pointer value.
type EntFldAddr struct {
	EntityID  int32
	FieldAddr int32
}

// ToI32 encodes e as the VM does: (entity_id*addr_count + field_addr)*4.
func (e EntFldAddr) ToI32(addrCount int32) int32 {
	return (e.EntityID*addrCount + e.FieldAddr) * 4
}

// FromI32 decodes an encoded VM pointer back into an EntFldAddr. It is a
// fatal interface error if encoded is not a multiple of 4, or if the
// decoded field_addr falls outside [0, addrCount).
func FromI32(encoded int32, addrCount int32) (EntFldAddr, error) {
	if addrCount <= 0 {
		return EntFldAddr{}, newErr(ErrInvalidFieldAddr, "addrCount must be positive, got %d", addrCount)
	}
	if encoded%4 != 0 {
		return EntFldAddr{}, newErr(ErrInvalidFieldAddr, "encoded value %d is not word-aligned", encoded)
	}
	word := encoded / 4
	entityID := word / addrCount
	fieldAddr := word % addrCount
	if fieldAddr < 0 || fieldAddr >= addrCount {
		return EntFldAddr{}, newErr(ErrInvalidFieldAddr, "field_addr %d out of range [0,%d)", fieldAddr, addrCount)
	}
	return EntFldAddr{EntityID: entityID, FieldAddr: fieldAddr}, nil
}
