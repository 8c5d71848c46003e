package model

import "time"

// ElectronicStructureDoc is the summary document for one material.
// This is a pure domain model with no database-specific dependencies or tags;
// the bandstructure and dos sub-documents may be absent (nil) when the
// corresponding calculations were never run for the material.
type ElectronicStructureDoc struct {
	MaterialID       string                `json:"material_id"`
	FormulaPretty    string                `json:"formula_pretty,omitempty"`
	BandGap          float64               `json:"band_gap"`
	Efermi           float64               `json:"efermi"`
	IsGapDirect      bool                  `json:"is_gap_direct"`
	IsMetal          bool                  `json:"is_metal"`
	MagneticOrdering Ordering              `json:"magnetic_ordering,omitempty"`
	BandStructure    *BandStructureSummary `json:"bandstructure,omitempty"`
	Dos              *DosSummary           `json:"dos,omitempty"`
	LastUpdated      time.Time             `json:"last_updated"`
}

// BandStructureSummary maps a k-path convention to the line-mode calculation
// that produced it. A present entry always carries a non-empty task id.
type BandStructureSummary map[BSPathType]BandStructureEntry

// BandStructureEntry describes one stored line-mode band structure.
type BandStructureEntry struct {
	TaskID      string  `json:"task_id"`
	BandGap     float64 `json:"band_gap"`
	Efermi      float64 `json:"efermi"`
	IsGapDirect bool    `json:"is_gap_direct"`
}

// DosSummary describes the stored density-of-states calculations, keyed
// first by projection bucket and then by spin channel ("1" / "-1").
type DosSummary struct {
	Total map[string]DosEntry `json:"total,omitempty"`
}

// DosEntry describes one stored density-of-states calculation.
type DosEntry struct {
	TaskID  string  `json:"task_id"`
	BandGap float64 `json:"band_gap"`
}

// RawObject is the untyped payload fetched from the object store by task id:
// a one-element collection whose first element is the transport-encoded
// (base64 of zlib of msgpack) object string.
type RawObject []string
