package packed

import (
	"fmt"

	"matapi/internal/model"
)

// Embedded type tags used by the packed format. Every tagged substructure
// carries both keys; dispatch is on classKey.
const (
	moduleKey = "@module"
	classKey  = "@class"
)

type rebuildFunc func(map[string]any) (model.Object, error)

// rebuilders is a closed registry: a payload tagged with anything else is
// rejected with ErrUnknownClass rather than reconstructed dynamically.
var rebuilders = map[string]rebuildFunc{
	"BandStructure":         rebuildBandStructure,
	"BandStructureSymmLine": rebuildBandStructureSymmLine,
	"Dos":                   rebuildDos,
	"CompleteDos":           rebuildCompleteDos,
}

// Rebuild reconstructs a typed scientific object from the generic structure
// produced by msgpack deserialization, resolving the embedded type tag.
func Rebuild(data any) (model.Object, error) {
	m, ok := data.(map[string]any)
	if !ok {
		return nil, stageErrf(StageRebuild, "data field is %T, expected a tagged object", data)
	}
	class, ok := m[classKey].(string)
	if !ok {
		return nil, stageErrf(StageRebuild, "tagged object has no %s field", classKey)
	}
	fn, ok := rebuilders[class]
	if !ok {
		return nil, stageErrf(StageRebuild, "%w: %q", ErrUnknownClass, class)
	}
	return fn(m)
}

func rebuildBandStructure(m map[string]any) (model.Object, error) {
	bs, err := bandStructureFields(m)
	if err != nil {
		return nil, err
	}
	return bs, nil
}

func rebuildBandStructureSymmLine(m map[string]any) (model.Object, error) {
	bs, err := bandStructureFields(m)
	if err != nil {
		return nil, err
	}

	labelsRaw, err := requireMap(m, "labels_dict")
	if err != nil {
		return nil, err
	}
	labels := make(map[string][]float64, len(labelsRaw))
	for name, coords := range labelsRaw {
		fracs, err := floatSlice(coords)
		if err != nil {
			return nil, stageErrf(StageRebuild, "labels_dict[%s]: %v", name, err)
		}
		labels[name] = fracs
	}

	sl := &model.BandStructureSymmLine{BandStructure: *bs, LabelsDict: labels}

	if raw, ok := m["branches"]; ok && raw != nil {
		branches, err := branchList(raw)
		if err != nil {
			return nil, err
		}
		sl.Branches = branches
	}
	return sl, nil
}

// bandStructureFields extracts the fields shared by both band structure
// variants. lattice_rec, efermi, kpoints and bands are required.
func bandStructureFields(m map[string]any) (*model.BandStructure, error) {
	latticeRaw, err := requireMap(m, "lattice_rec")
	if err != nil {
		return nil, err
	}
	matrix, err := floatMatrix(latticeRaw["matrix"])
	if err != nil {
		return nil, stageErrf(StageRebuild, "lattice_rec.matrix: %v", err)
	}

	efermi, err := requireFloat(m, "efermi")
	if err != nil {
		return nil, err
	}

	kpoints, err := floatMatrix(m["kpoints"])
	if err != nil {
		return nil, stageErrf(StageRebuild, "kpoints: %v", err)
	}

	bandsRaw, err := requireMap(m, "bands")
	if err != nil {
		return nil, err
	}
	bands := make(map[model.Spin][][]float64, len(bandsRaw))
	for spin, rows := range bandsRaw {
		mat, err := floatMatrix(rows)
		if err != nil {
			return nil, stageErrf(StageRebuild, "bands[%s]: %v", spin, err)
		}
		bands[model.Spin(spin)] = mat
	}

	bs := &model.BandStructure{
		LatticeRec: model.Lattice{Matrix: matrix},
		Efermi:     efermi,
		Kpoints:    kpoints,
		Bands:      bands,
	}

	if v, ok := m["is_metal"].(bool); ok {
		bs.IsMetal = v
	}
	if raw, ok := m["band_gap"]; ok && raw != nil {
		gap, ok := raw.(map[string]any)
		if !ok {
			return nil, stageErrf(StageRebuild, "band_gap is %T, expected a map", raw)
		}
		energy, err := requireFloat(gap, "energy")
		if err != nil {
			return nil, err
		}
		info := &model.BandGapInfo{Energy: energy}
		if direct, ok := gap["direct"].(bool); ok {
			info.Direct = direct
		}
		if tr, ok := gap["transition"].(string); ok {
			info.Transition = tr
		}
		bs.BandGap = info
	}
	return bs, nil
}

func rebuildDos(m map[string]any) (model.Object, error) {
	dos, err := dosFields(m)
	if err != nil {
		return nil, err
	}
	return dos, nil
}

func rebuildCompleteDos(m map[string]any) (model.Object, error) {
	dos, err := dosFields(m)
	if err != nil {
		return nil, err
	}
	cd := &model.CompleteDos{Dos: *dos}

	if raw, ok := m["pdos"]; ok && raw != nil {
		proj, ok := raw.(map[string]any)
		if !ok {
			return nil, stageErrf(StageRebuild, "pdos is %T, expected a map", raw)
		}
		cd.Pdos = make(map[string]map[model.Spin][]float64, len(proj))
		for site, densRaw := range proj {
			dens, err := spinDensities(densRaw)
			if err != nil {
				return nil, stageErrf(StageRebuild, "pdos[%s]: %v", site, err)
			}
			cd.Pdos[site] = dens
		}
	}
	return cd, nil
}

func dosFields(m map[string]any) (*model.Dos, error) {
	efermi, err := requireFloat(m, "efermi")
	if err != nil {
		return nil, err
	}
	energies, err := floatSlice(m["energies"])
	if err != nil {
		return nil, stageErrf(StageRebuild, "energies: %v", err)
	}
	densities, err := spinDensities(m["densities"])
	if err != nil {
		return nil, stageErrf(StageRebuild, "densities: %v", err)
	}
	return &model.Dos{Efermi: efermi, Energies: energies, Densities: densities}, nil
}

func branchList(raw any) ([]model.Branch, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, stageErrf(StageRebuild, "branches is %T, expected a list", raw)
	}
	branches := make([]model.Branch, 0, len(items))
	for i, item := range items {
		bm, ok := item.(map[string]any)
		if !ok {
			return nil, stageErrf(StageRebuild, "branches[%d] is %T, expected a map", i, item)
		}
		start, err := requireFloat(bm, "start_index")
		if err != nil {
			return nil, err
		}
		end, err := requireFloat(bm, "end_index")
		if err != nil {
			return nil, err
		}
		name, _ := bm["name"].(string)
		branches = append(branches, model.Branch{
			StartIndex: int(start),
			EndIndex:   int(end),
			Name:       name,
		})
	}
	return branches, nil
}

func spinDensities(raw any) (map[model.Spin][]float64, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("is %T, expected a spin-channel map", raw)
	}
	out := make(map[model.Spin][]float64, len(m))
	for spin, vals := range m {
		fs, err := floatSlice(vals)
		if err != nil {
			return nil, fmt.Errorf("spin %s: %v", spin, err)
		}
		out[model.Spin(spin)] = fs
	}
	return out, nil
}

func requireMap(m map[string]any, key string) (map[string]any, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil, stageErrf(StageRebuild, "missing required field %q", key)
	}
	val, ok := raw.(map[string]any)
	if !ok {
		return nil, stageErrf(StageRebuild, "field %q is %T, expected a map", key, raw)
	}
	return val, nil
}

func requireFloat(m map[string]any, key string) (float64, error) {
	raw, ok := m[key]
	if !ok {
		return 0, stageErrf(StageRebuild, "missing required field %q", key)
	}
	f, ok := asFloat(raw)
	if !ok {
		return 0, stageErrf(StageRebuild, "field %q is %T, expected a number", key, raw)
	}
	return f, nil
}

// asFloat normalizes the numeric types msgpack deserialization can produce.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func floatSlice(raw any) ([]float64, error) {
	if raw == nil {
		return nil, fmt.Errorf("missing")
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("is %T, expected a list of numbers", raw)
	}
	out := make([]float64, len(items))
	for i, item := range items {
		f, ok := asFloat(item)
		if !ok {
			return nil, fmt.Errorf("element %d is %T, expected a number", i, item)
		}
		out[i] = f
	}
	return out, nil
}

func floatMatrix(raw any) ([][]float64, error) {
	if raw == nil {
		return nil, fmt.Errorf("missing")
	}
	rows, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("is %T, expected a list of rows", raw)
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		fs, err := floatSlice(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %v", i, err)
		}
		out[i] = fs
	}
	return out, nil
}
