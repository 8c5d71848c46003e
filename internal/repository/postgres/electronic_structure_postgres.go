package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"matapi/internal/model"
	"matapi/internal/query"
	"matapi/internal/repository"
)

// ElectronicStructurePostgres is a PostgreSQL implementation of
// repository.ElectronicStructureRepository. Sub-documents live in JSONB
// columns; scalar summary values in plain columns. It uses database/sql
// with parameterized queries and contains no business logic.
type ElectronicStructurePostgres struct {
	db *sql.DB
}

// NewElectronicStructurePostgres creates a new ElectronicStructurePostgres repository.
func NewElectronicStructurePostgres(db *sql.DB) *ElectronicStructurePostgres {
	return &ElectronicStructurePostgres{db: db}
}

var _ repository.ElectronicStructureRepository = (*ElectronicStructurePostgres)(nil)

const scalarColumns = `material_id, formula_pretty, band_gap, efermi, is_gap_direct, is_metal, magnetic_ordering, last_updated`

// subdocColumns names the JSONB columns that can be limited by a fields list.
var subdocColumns = []string{"bandstructure", "dos"}

// FindByMaterialID fetches one document. A non-empty fields list limits
// which JSONB sub-documents are read; unknown field names are ignored
// rather than rejected, matching a field-limited GET.
func (r *ElectronicStructurePostgres) FindByMaterialID(ctx context.Context, materialID string, fields ...string) (*model.ElectronicStructureDoc, error) {
	cols := make([]string, 0, len(subdocColumns))
	for _, col := range subdocColumns {
		if len(fields) == 0 || contains(fields, col) {
			cols = append(cols, col)
		} else {
			cols = append(cols, "NULL::jsonb AS "+col)
		}
	}

	q := fmt.Sprintf(`
		SELECT %s, %s
		FROM electronic_structure
		WHERE material_id = $1
	`, scalarColumns, strings.Join(cols, ", "))

	row := r.db.QueryRowContext(ctx, q, materialID)
	return scanDoc(row.Scan)
}

// List returns documents matching the filter using LIMIT/OFFSET pagination
// and a total count for the same filter.
func (r *ElectronicStructurePostgres) List(ctx context.Context, p *query.ElectronicStructureParams, pq repository.PageQuery) (*repository.PageResult[model.ElectronicStructureDoc], error) {
	where, args := buildWhere(p)

	var total int
	qCount := `SELECT COUNT(*) FROM electronic_structure` + where
	if err := r.db.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, err
	}

	var sortFields []string
	if p != nil {
		sortFields = p.SortFields
	}
	qList := fmt.Sprintf(`
		SELECT %s, bandstructure, dos
		FROM electronic_structure%s%s
		LIMIT $%d OFFSET $%d
	`, scalarColumns, where, buildOrderBy(sortFields), len(args)+1, len(args)+2)
	args = append(args, pq.Limit, pq.Offset)

	rows, err := r.db.QueryContext(ctx, qList, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ElectronicStructureDoc, 0)
	for rows.Next() {
		doc, err := scanDoc(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.ElectronicStructureDoc]{
		Items: items,
		Total: total,
	}, nil
}

// buildWhere translates the search filters into a WHERE clause. Element set
// filters use array containment/overlap against the elements column.
func buildWhere(p *query.ElectronicStructureParams) (string, []any) {
	if p == nil {
		return "", nil
	}
	var conds []string
	var args []any

	next := func() int { return len(args) + 1 }

	if p.BandGap != nil {
		conds = append(conds, fmt.Sprintf("band_gap BETWEEN $%d AND $%d", next(), next()+1))
		args = append(args, p.BandGap.Min, p.BandGap.Max)
	}
	if p.Efermi != nil {
		conds = append(conds, fmt.Sprintf("efermi BETWEEN $%d AND $%d", next(), next()+1))
		args = append(args, p.Efermi.Min, p.Efermi.Max)
	}
	if len(p.Formula) > 0 {
		conds = append(conds, fmt.Sprintf("formula_pretty = ANY($%d)", next()))
		args = append(args, pqStringArray(p.Formula))
	}
	if len(p.Chemsys) > 0 {
		conds = append(conds, fmt.Sprintf("chemsys = ANY($%d::text[])", next()))
		args = append(args, pqStringArray(p.Chemsys))
	}
	if len(p.Elements) > 0 {
		conds = append(conds, fmt.Sprintf("elements @> $%d::text[]", next()))
		args = append(args, pqStringArray(p.Elements))
	}
	if len(p.ExcludeElements) > 0 {
		conds = append(conds, fmt.Sprintf("NOT (elements && $%d::text[])", next()))
		args = append(args, pqStringArray(p.ExcludeElements))
	}
	if p.IsGapDirect != nil {
		conds = append(conds, fmt.Sprintf("is_gap_direct = $%d", next()))
		args = append(args, *p.IsGapDirect)
	}
	if p.IsMetal != nil {
		conds = append(conds, fmt.Sprintf("is_metal = $%d", next()))
		args = append(args, *p.IsMetal)
	}
	if p.MagneticOrdering != "" {
		conds = append(conds, fmt.Sprintf("magnetic_ordering = $%d", next()))
		args = append(args, string(p.MagneticOrdering))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// sortColumns whitelists the fields List can order by.
var sortColumns = map[string]string{
	"material_id":    "material_id",
	"formula_pretty": "formula_pretty",
	"band_gap":       "band_gap",
	"efermi":         "efermi",
	"last_updated":   "last_updated",
}

// buildOrderBy translates sort fields into an ORDER BY clause. A "-" prefix
// means descending. Fields outside the whitelist are dropped, and material_id
// is always the final tiebreaker so pagination stays stable.
func buildOrderBy(fields []string) string {
	cols := make([]string, 0, len(fields)+1)
	seenID := false
	for _, f := range fields {
		dir := ""
		name := f
		if strings.HasPrefix(f, "-") {
			dir = " DESC"
			name = f[1:]
		}
		col, ok := sortColumns[name]
		if !ok {
			continue
		}
		if col == "material_id" {
			seenID = true
		}
		cols = append(cols, col+dir)
	}
	if !seenID {
		cols = append(cols, "material_id")
	}
	return " ORDER BY " + strings.Join(cols, ", ")
}

// pqStringArray renders a text[] literal for ANY() comparisons without
// pulling in a driver-specific array type.
func pqStringArray(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return "{" + strings.Join(quoted, ",") + "}"
}

// scanDoc scans one row in scalarColumns + (bandstructure, dos) order.
func scanDoc(scan func(dest ...any) error) (*model.ElectronicStructureDoc, error) {
	var (
		doc      model.ElectronicStructureDoc
		ordering sql.NullString
		bsRaw    []byte
		dosRaw   []byte
	)
	if err := scan(
		&doc.MaterialID,
		&doc.FormulaPretty,
		&doc.BandGap,
		&doc.Efermi,
		&doc.IsGapDirect,
		&doc.IsMetal,
		&ordering,
		&doc.LastUpdated,
		&bsRaw,
		&dosRaw,
	); err != nil {
		return nil, err
	}

	if ordering.Valid {
		doc.MagneticOrdering = model.Ordering(ordering.String)
	}
	if len(bsRaw) > 0 {
		var bs model.BandStructureSummary
		if err := json.Unmarshal(bsRaw, &bs); err != nil {
			return nil, fmt.Errorf("decode bandstructure column: %w", err)
		}
		doc.BandStructure = &bs
	}
	if len(dosRaw) > 0 {
		var dos model.DosSummary
		if err := json.Unmarshal(dosRaw, &dos); err != nil {
			return nil, fmt.Errorf("decode dos column: %w", err)
		}
		doc.Dos = &dos
	}
	return &doc, nil
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
