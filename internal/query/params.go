// Package query contains typed search parameter builders. They translate
// domain filters into REST query parameters (for the client side) and into
// store criteria fragments (for the server side). Translation only — no
// validation beyond what the mapping itself requires.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"matapi/internal/model"
)

// FloatRange is an inclusive [Min, Max] filter on a numeric field.
type FloatRange struct {
	Min float64
	Max float64
}

// IntRange is an inclusive [Min, Max] filter on an integer field.
type IntRange struct {
	Min int
	Max int
}

// ElectronicStructureParams are the search filters for electronic structure
// documents. Nil pointer fields are unset and omitted from the translation.
type ElectronicStructureParams struct {
	BandGap          *FloatRange
	Efermi           *FloatRange
	Chemsys          []string
	Formula          []string
	Elements         []string
	ExcludeElements  []string
	IsGapDirect      *bool
	IsMetal          *bool
	MagneticOrdering model.Ordering
	NumElements      *IntRange
	SortFields       []string
}

// Values renders the parameters as REST query parameters.
func (p *ElectronicStructureParams) Values() url.Values {
	v := url.Values{}
	if len(p.Formula) > 0 {
		v.Set("formula", strings.Join(p.Formula, ","))
	}
	if len(p.Chemsys) > 0 {
		v.Set("chemsys", strings.Join(p.Chemsys, ","))
	}
	if len(p.Elements) > 0 {
		v.Set("elements", strings.Join(p.Elements, ","))
	}
	if len(p.ExcludeElements) > 0 {
		v.Set("exclude_elements", strings.Join(p.ExcludeElements, ","))
	}
	setRange(v, "band_gap", p.BandGap)
	setRange(v, "efermi", p.Efermi)
	if p.MagneticOrdering != "" {
		v.Set("magnetic_ordering", string(p.MagneticOrdering))
	}
	if p.NumElements != nil {
		v.Set("nelements_min", strconv.Itoa(p.NumElements.Min))
		v.Set("nelements_max", strconv.Itoa(p.NumElements.Max))
	}
	setBool(v, "is_gap_direct", p.IsGapDirect)
	setBool(v, "is_metal", p.IsMetal)
	setSortFields(v, p.SortFields)
	return v
}

// BandStructureParams are the search filters for band structure summaries.
// The path type always translates; it defaults server-side when empty.
type BandStructureParams struct {
	PathType         model.BSPathType
	BandGap          *FloatRange
	Efermi           *FloatRange
	IsGapDirect      *bool
	IsMetal          *bool
	MagneticOrdering model.Ordering
	SortFields       []string
}

// Values renders the parameters as REST query parameters.
func (p *BandStructureParams) Values() url.Values {
	v := url.Values{}
	pathType := p.PathType
	if pathType == "" {
		pathType = model.PathSetyawanCurtarolo
	}
	v.Set("path_type", string(pathType))
	setRange(v, "band_gap", p.BandGap)
	setRange(v, "efermi", p.Efermi)
	if p.MagneticOrdering != "" {
		v.Set("magnetic_ordering", string(p.MagneticOrdering))
	}
	setBool(v, "is_gap_direct", p.IsGapDirect)
	setBool(v, "is_metal", p.IsMetal)
	setSortFields(v, p.SortFields)
	return v
}

// DosParams are the search filters for density-of-states summaries.
type DosParams struct {
	ProjectionType   model.DOSProjectionType
	Spin             model.Spin
	Element          string
	Orbital          string
	BandGap          *FloatRange
	Efermi           *FloatRange
	MagneticOrdering model.Ordering
	SortFields       []string
}

// Values renders the parameters as REST query parameters. Projection type
// and spin always translate, defaulting to the total dos on the up channel.
func (p *DosParams) Values() url.Values {
	v := url.Values{}
	projection := p.ProjectionType
	if projection == "" {
		projection = model.ProjectionTotal
	}
	spin := p.Spin
	if spin == "" {
		spin = model.SpinUp
	}
	v.Set("projection_type", string(projection))
	v.Set("spin", string(spin))
	if p.Element != "" {
		v.Set("element", p.Element)
	}
	if p.Orbital != "" {
		v.Set("orbital", p.Orbital)
	}
	setRange(v, "band_gap", p.BandGap)
	setRange(v, "efermi", p.Efermi)
	if p.MagneticOrdering != "" {
		v.Set("magnetic_ordering", string(p.MagneticOrdering))
	}
	setSortFields(v, p.SortFields)
	return v
}

func setRange(v url.Values, field string, r *FloatRange) {
	if r == nil {
		return
	}
	v.Set(field+"_min", formatFloat(r.Min))
	v.Set(field+"_max", formatFloat(r.Max))
}

func setBool(v url.Values, field string, b *bool) {
	if b == nil {
		return
	}
	v.Set(field, strconv.FormatBool(*b))
}

func setSortFields(v url.Values, fields []string) {
	if len(fields) == 0 {
		return
	}
	trimmed := make([]string, len(fields))
	for i, f := range fields {
		trimmed[i] = strings.TrimSpace(f)
	}
	v.Set("_sort_fields", strings.Join(trimmed, ","))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
