package syntax

import "fmt"

// FoldingRegionType tells whether a marker opens or closes a region.
type FoldingRegionType uint8

// Folding region marker types.
const (
	FoldingRegionNone FoldingRegionType = iota
	FoldingRegionBegin
	FoldingRegionEnd
)

// String returns the marker type name.
func (t FoldingRegionType) String() string {
	switch t {
	case FoldingRegionBegin:
		return "begin"
	case FoldingRegionEnd:
		return "end"
	default:
		return "none"
	}
}

// FoldingRegion is a begin or end marker of a named folding region.
// Begin and end markers of the same region share an ID and nest like
// parentheses.
type FoldingRegion struct {
	id  uint16
	typ FoldingRegionType
}

// NewFoldingRegion creates a marker. It is mainly useful for tests and
// consumers that persist folding information.
func NewFoldingRegion(id uint16, typ FoldingRegionType) FoldingRegion {
	return FoldingRegion{id: id, typ: typ}
}

// IsValid reports whether the marker is a begin or end marker.
func (r FoldingRegion) IsValid() bool {
	return r.typ != FoldingRegionNone
}

// ID returns the region identifier.
func (r FoldingRegion) ID() uint16 {
	return r.id
}

// Type returns whether the marker opens or closes the region.
func (r FoldingRegion) Type() FoldingRegionType {
	return r.typ
}

// Sibling returns the matching marker of the opposite type.
func (r FoldingRegion) Sibling() FoldingRegion {
	switch r.typ {
	case FoldingRegionBegin:
		return FoldingRegion{id: r.id, typ: FoldingRegionEnd}
	case FoldingRegionEnd:
		return FoldingRegion{id: r.id, typ: FoldingRegionBegin}
	default:
		return FoldingRegion{}
	}
}

// String returns e.g. "begin(3)".
func (r FoldingRegion) String() string {
	return fmt.Sprintf("%s(%d)", r.typ, r.id)
}
