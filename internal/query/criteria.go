package query

import "matapi/internal/model"

// Criteria is a store-agnostic filter fragment in query-pipeline notation
// ($gte, $lte, $in, $all operators), the shape consumed by document stores.
type Criteria map[string]any

// Criteria renders the parameters as a filter fragment for the document
// store. Unset fields contribute nothing.
func (p *ElectronicStructureParams) Criteria() Criteria {
	crit := Criteria{}
	rangeCriteria(crit, "band_gap", p.BandGap)
	rangeCriteria(crit, "efermi", p.Efermi)
	if len(p.Chemsys) > 0 {
		crit["chemsys"] = map[string]any{"$in": p.Chemsys}
	}
	if len(p.Formula) > 0 {
		crit["formula_pretty"] = map[string]any{"$in": p.Formula}
	}
	if len(p.Elements) > 0 || len(p.ExcludeElements) > 0 {
		el := map[string]any{}
		if len(p.Elements) > 0 {
			el["$all"] = p.Elements
		}
		if len(p.ExcludeElements) > 0 {
			el["$nin"] = p.ExcludeElements
		}
		crit["elements"] = el
	}
	if p.IsGapDirect != nil {
		crit["is_gap_direct"] = *p.IsGapDirect
	}
	if p.IsMetal != nil {
		crit["is_metal"] = *p.IsMetal
	}
	if p.MagneticOrdering != "" {
		crit["magnetic_ordering"] = string(p.MagneticOrdering)
	}
	if p.NumElements != nil {
		crit["nelements"] = map[string]any{"$gte": p.NumElements.Min, "$lte": p.NumElements.Max}
	}
	return crit
}

// HasPropsCriteria filters materials that have all of the named properties
// (e.g. "bandstructure", "dos") materialized.
func HasPropsCriteria(props []string) Criteria {
	if len(props) == 0 {
		return Criteria{}
	}
	return Criteria{"has_props": map[string]any{"$all": props}}
}

// MaterialIDsCriteria filters documents by a set of material ids.
func MaterialIDsCriteria(ids []string) Criteria {
	if len(ids) == 0 {
		return Criteria{}
	}
	return Criteria{"material_id": map[string]any{"$in": ids}}
}

// IsStableCriteria filters by thermodynamic stability. A nil flag means no
// filter at all, not "stable = false".
func IsStableCriteria(isStable *bool) Criteria {
	if isStable == nil {
		return Criteria{}
	}
	return Criteria{"is_stable": *isStable}
}

// MagneticOrderingCriteria filters by magnetic ordering.
func MagneticOrderingCriteria(ordering model.Ordering) Criteria {
	if ordering == "" {
		return Criteria{}
	}
	return Criteria{"ordering": string(ordering)}
}

// StatsPipeline builds the aggregation stages that sample a single numeric
// field for distribution statistics: an optional range match, an optional
// random sample, and a projection down to the field itself. The statistical
// post-processing of the sampled values happens elsewhere.
func StatsPipeline(field string, numSamples int, minVal, maxVal *float64) []Criteria {
	var pipeline []Criteria

	if minVal != nil || maxVal != nil {
		match := map[string]any{}
		if minVal != nil {
			match["$gte"] = *minVal
		}
		if maxVal != nil {
			match["$lte"] = *maxVal
		}
		pipeline = append(pipeline, Criteria{"$match": map[string]any{field: match}})
	}

	if numSamples > 0 {
		pipeline = append(pipeline, Criteria{"$sample": map[string]any{"size": numSamples}})
	}

	pipeline = append(pipeline, Criteria{"$project": map[string]any{field: 1, "_id": 0}})
	return pipeline
}

func rangeCriteria(crit Criteria, field string, r *FloatRange) {
	if r == nil {
		return
	}
	crit[field] = map[string]any{"$gte": r.Min, "$lte": r.Max}
}
