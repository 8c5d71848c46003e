package model

// Object is a decoded scientific object reconstructed from a packed payload.
// Class reports the type tag the object was stored under, so callers that
// receive an Object (e.g. a band structure that may or may not be line-mode)
// can branch without reflection.
type Object interface {
	Class() string
}

// Lattice is a 3x3 row-vector lattice matrix in Cartesian coordinates.
type Lattice struct {
	Matrix [][]float64 `json:"matrix"`
}

// BandGapInfo summarizes the gap of a band structure.
type BandGapInfo struct {
	Energy     float64 `json:"energy"`
	Direct     bool    `json:"direct"`
	Transition string  `json:"transition,omitempty"`
}

// BandStructure is a uniform (k-mesh) band structure.
// Bands is keyed by spin channel; each value is [band][kpoint] energies in eV.
type BandStructure struct {
	LatticeRec Lattice              `json:"lattice_rec"`
	Efermi     float64              `json:"efermi"`
	Kpoints    [][]float64          `json:"kpoints"`
	Bands      map[Spin][][]float64 `json:"bands"`
	IsMetal    bool                 `json:"is_metal"`
	BandGap    *BandGapInfo         `json:"band_gap,omitempty"`
}

func (*BandStructure) Class() string { return "BandStructure" }

// Branch is one contiguous segment of a line-mode k-point path.
type Branch struct {
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
	Name       string `json:"name"`
}

// BandStructureSymmLine is a line-mode band structure along a
// high-symmetry k-point path.
type BandStructureSymmLine struct {
	BandStructure
	LabelsDict map[string][]float64 `json:"labels_dict"`
	Branches   []Branch             `json:"branches,omitempty"`
}

func (*BandStructureSymmLine) Class() string { return "BandStructureSymmLine" }

// Dos is a basic density of states on a shared energy grid.
// Densities is keyed by spin channel, in states/eV.
type Dos struct {
	Efermi    float64            `json:"efermi"`
	Energies  []float64          `json:"energies"`
	Densities map[Spin][]float64 `json:"densities"`
}

func (*Dos) Class() string { return "Dos" }

// CompleteDos is the total density of states together with optional
// element-projected contributions.
type CompleteDos struct {
	Dos
	Pdos map[string]map[Spin][]float64 `json:"pdos,omitempty"`
}

func (*CompleteDos) Class() string { return "CompleteDos" }
