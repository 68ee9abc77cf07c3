// Package kicad serializes a geometry plan into a KiCad board file and reads
// such files back for clearance verification. The writer streams nodes
// straight to the output; the reader parses a document into a small generic
// node tree the verifier walks.
package kicad

import "fmt"

// KiCad's fixed layer numbering for the layers we emit.
const (
	layerFCu      = 0
	layerBCu      = 31
	layerBSilk    = 36
	layerFSilk    = 37
	layerEdgeCuts = 44
	layerUser1    = 46
)

// copperName maps a plan copper index (0 = top) to the KiCad layer name.
// Single-layer plans still emit a two-layer board, KiCad's minimum.
func copperName(index, total int) string {
	if index == 0 {
		return "F.Cu"
	}
	if index >= total-1 {
		return "B.Cu"
	}
	return fmt.Sprintf("In%d.Cu", index)
}

// copperNumber maps a plan copper index to the KiCad layer ordinal.
func copperNumber(index, total int) int {
	if index == 0 {
		return layerFCu
	}
	if index >= total-1 {
		return layerBCu
	}
	return index
}
