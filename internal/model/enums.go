package model

// BSPathType is the k-point path convention of a line-mode band structure.
type BSPathType string

const (
	PathSetyawanCurtarolo BSPathType = "setyawan_curtarolo"
	PathHinuma            BSPathType = "hinuma"
	PathLatimerMunro      BSPathType = "latimer_munro"
)

// ParseBSPathType maps a string to a known path convention.
func ParseBSPathType(s string) (BSPathType, bool) {
	switch BSPathType(s) {
	case PathSetyawanCurtarolo, PathHinuma, PathLatimerMunro:
		return BSPathType(s), true
	}
	return "", false
}

// DOSProjectionType selects the density-of-states decomposition.
type DOSProjectionType string

const (
	ProjectionTotal    DOSProjectionType = "total"
	ProjectionElements DOSProjectionType = "elements"
	ProjectionOrbitals DOSProjectionType = "orbitals"
)

// Spin is a spin channel key. Non-spin-polarized data lives under SpinUp.
type Spin string

const (
	SpinUp   Spin = "1"
	SpinDown Spin = "-1"
)

// Ordering is the magnetic ordering of a material.
type Ordering string

const (
	OrderingFM  Ordering = "FM"
	OrderingAFM Ordering = "AFM"
	OrderingFiM Ordering = "FiM"
	OrderingNM  Ordering = "NM"
)
