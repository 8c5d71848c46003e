package packed

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"matapi/internal/model"
)

// Module tags written alongside the class tag. Kept identical to the values
// in existing stored payloads so that encoded objects interoperate.
const (
	moduleBandStructure = "pymatgen.electronic_structure.bandstructure"
	moduleDos           = "pymatgen.electronic_structure.dos"
	moduleLattice       = "pymatgen.core.lattice"
)

// Encode packs a scientific object into the transport string format
// base64(zlib(msgpack({"data": <tagged object>}))). It is the inverse of
// Decode for every registered object class.
func Encode(obj model.Object) (string, error) {
	data, err := tagged(obj)
	if err != nil {
		return "", err
	}

	packedBytes, err := msgpack.Marshal(map[string]any{"data": data})
	if err != nil {
		return "", fmt.Errorf("pack object payload: %w", err)
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(packedBytes); err != nil {
		return "", fmt.Errorf("compress object payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compress object payload: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func tagged(obj model.Object) (map[string]any, error) {
	switch o := obj.(type) {
	case *model.BandStructure:
		return taggedBandStructure(o, "BandStructure"), nil
	case *model.BandStructureSymmLine:
		m := taggedBandStructure(&o.BandStructure, "BandStructureSymmLine")
		labels := make(map[string]any, len(o.LabelsDict))
		for name, coords := range o.LabelsDict {
			labels[name] = anySlice(coords)
		}
		m["labels_dict"] = labels
		if len(o.Branches) > 0 {
			branches := make([]any, len(o.Branches))
			for i, b := range o.Branches {
				branches[i] = map[string]any{
					"start_index": int64(b.StartIndex),
					"end_index":   int64(b.EndIndex),
					"name":        b.Name,
				}
			}
			m["branches"] = branches
		}
		return m, nil
	case *model.Dos:
		m := taggedDos(o, "Dos")
		return m, nil
	case *model.CompleteDos:
		m := taggedDos(&o.Dos, "CompleteDos")
		if len(o.Pdos) > 0 {
			proj := make(map[string]any, len(o.Pdos))
			for site, dens := range o.Pdos {
				proj[site] = anySpinDensities(dens)
			}
			m["pdos"] = proj
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownClass, obj)
}

func taggedBandStructure(bs *model.BandStructure, class string) map[string]any {
	bands := make(map[string]any, len(bs.Bands))
	for spin, rows := range bs.Bands {
		bands[string(spin)] = anyMatrix(rows)
	}
	m := map[string]any{
		moduleKey: moduleBandStructure,
		classKey:  class,
		"lattice_rec": map[string]any{
			moduleKey: moduleLattice,
			classKey:  "Lattice",
			"matrix":  anyMatrix(bs.LatticeRec.Matrix),
		},
		"efermi":   bs.Efermi,
		"kpoints":  anyMatrix(bs.Kpoints),
		"bands":    bands,
		"is_metal": bs.IsMetal,
	}
	if bs.BandGap != nil {
		gap := map[string]any{
			"energy": bs.BandGap.Energy,
			"direct": bs.BandGap.Direct,
		}
		if bs.BandGap.Transition != "" {
			gap["transition"] = bs.BandGap.Transition
		}
		m["band_gap"] = gap
	}
	return m
}

func taggedDos(dos *model.Dos, class string) map[string]any {
	return map[string]any{
		moduleKey:   moduleDos,
		classKey:    class,
		"efermi":    dos.Efermi,
		"energies":  anySlice(dos.Energies),
		"densities": anySpinDensities(dos.Densities),
	}
}

func anySpinDensities(dens map[model.Spin][]float64) map[string]any {
	out := make(map[string]any, len(dens))
	for spin, vals := range dens {
		out[string(spin)] = anySlice(vals)
	}
	return out
}

func anySlice(fs []float64) []any {
	out := make([]any, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

func anyMatrix(rows [][]float64) []any {
	out := make([]any, len(rows))
	for i, row := range rows {
		out[i] = anySlice(row)
	}
	return out
}
