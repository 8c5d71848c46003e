package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matapi/internal/model"
	"matapi/internal/query"
	"matapi/internal/repository"
)

var docColumns = []string{
	"material_id", "formula_pretty", "band_gap", "efermi",
	"is_gap_direct", "is_metal", "magnetic_ordering", "last_updated",
	"bandstructure", "dos",
}

func docRow(now time.Time, bs, dos any) *sqlmock.Rows {
	return sqlmock.NewRows(docColumns).
		AddRow("mp-149", "Si", 1.12, 5.6, false, false, "NM", now, bs, dos)
}

func TestElectronicStructurePostgres_FindByMaterialID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewElectronicStructurePostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("found with sub-documents", func(t *testing.T) {
		bsJSON := []byte(`{"setyawan_curtarolo":{"task_id":"mp-149-bs","band_gap":1.12}}`)
		dosJSON := []byte(`{"total":{"1":{"task_id":"mp-149-dos"}}}`)

		mock.ExpectQuery("SELECT (.+) FROM electronic_structure WHERE material_id = ?").
			WithArgs("mp-149").
			WillReturnRows(docRow(now, bsJSON, dosJSON))

		doc, err := repo.FindByMaterialID(ctx, "mp-149")

		require.NoError(t, err)
		assert.Equal(t, "mp-149", doc.MaterialID)
		assert.Equal(t, "Si", doc.FormulaPretty)
		assert.Equal(t, model.OrderingNM, doc.MagneticOrdering)
		require.NotNil(t, doc.BandStructure)
		assert.Equal(t, "mp-149-bs", (*doc.BandStructure)[model.PathSetyawanCurtarolo].TaskID)
		require.NotNil(t, doc.Dos)
		assert.Equal(t, "mp-149-dos", doc.Dos.Total["1"].TaskID)
	})

	t.Run("field-limited read nulls the other sub-document", func(t *testing.T) {
		dosJSON := []byte(`{"total":{"1":{"task_id":"mp-149-dos"}}}`)

		mock.ExpectQuery("SELECT (.+) NULL::jsonb AS bandstructure, dos FROM electronic_structure WHERE material_id = ?").
			WithArgs("mp-149").
			WillReturnRows(docRow(now, nil, dosJSON))

		doc, err := repo.FindByMaterialID(ctx, "mp-149", "dos")

		require.NoError(t, err)
		assert.Nil(t, doc.BandStructure)
		require.NotNil(t, doc.Dos)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM electronic_structure WHERE material_id = ?").
			WithArgs("mp-0").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByMaterialID(ctx, "mp-0")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, doc)
	})

	t.Run("corrupt jsonb column", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM electronic_structure WHERE material_id = ?").
			WithArgs("mp-149").
			WillReturnRows(docRow(now, []byte(`{not json`), nil))

		doc, err := repo.FindByMaterialID(ctx, "mp-149")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "decode bandstructure column")
		assert.Nil(t, doc)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestElectronicStructurePostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewElectronicStructurePostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("unfiltered page", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM electronic_structure").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		mock.ExpectQuery("SELECT (.+) FROM electronic_structure ORDER BY material_id").
			WithArgs(10, 0).
			WillReturnRows(docRow(now, nil, nil))

		res, err := repo.List(ctx, nil, repository.PageQuery{Limit: 10, Offset: 0})

		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		require.Len(t, res.Items, 1)
		assert.Equal(t, "mp-149", res.Items[0].MaterialID)
	})

	t.Run("filters become WHERE conditions", func(t *testing.T) {
		isMetal := false
		p := &query.ElectronicStructureParams{
			BandGap:          &query.FloatRange{Min: 0.5, Max: 2},
			Formula:          []string{"Si", "GaAs"},
			IsMetal:          &isMetal,
			MagneticOrdering: model.OrderingNM,
		}

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM electronic_structure WHERE band_gap BETWEEN (.+) AND formula_pretty = ANY(.+) AND is_metal = (.+) AND magnetic_ordering = ?").
			WithArgs(0.5, 2.0, `{"Si","GaAs"}`, false, "NM").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		mock.ExpectQuery("SELECT (.+) FROM electronic_structure WHERE (.+) ORDER BY material_id").
			WithArgs(0.5, 2.0, `{"Si","GaAs"}`, false, "NM", 5, 0).
			WillReturnRows(docRow(now, nil, nil))

		res, err := repo.List(ctx, p, repository.PageQuery{Limit: 5, Offset: 0})

		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
	})

	t.Run("element filter and sort fields reach the query", func(t *testing.T) {
		p := &query.ElectronicStructureParams{
			Elements:   []string{"Si", "O"},
			SortFields: []string{"-band_gap"},
		}

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM electronic_structure WHERE elements @> (.+)").
			WithArgs(`{"Si","O"}`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		mock.ExpectQuery("SELECT (.+) FROM electronic_structure WHERE elements @> (.+) ORDER BY band_gap DESC, material_id").
			WithArgs(`{"Si","O"}`, 10, 0).
			WillReturnRows(docRow(now, nil, nil))

		res, err := repo.List(ctx, p, repository.PageQuery{Limit: 10, Offset: 0})

		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
	})

	t.Run("count failure stops early", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM electronic_structure").
			WillReturnError(sql.ErrConnDone)

		res, err := repo.List(ctx, nil, repository.PageQuery{Limit: 10, Offset: 0})

		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.Nil(t, res)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildWhere(t *testing.T) {
	t.Run("nil params", func(t *testing.T) {
		where, args := buildWhere(nil)
		assert.Empty(t, where)
		assert.Nil(t, args)
	})

	t.Run("placeholders number left to right", func(t *testing.T) {
		isGapDirect := true
		p := &query.ElectronicStructureParams{
			BandGap:     &query.FloatRange{Min: 1, Max: 3},
			Efermi:      &query.FloatRange{Min: -1, Max: 1},
			IsGapDirect: &isGapDirect,
		}

		where, args := buildWhere(p)

		assert.Equal(t, " WHERE band_gap BETWEEN $1 AND $2 AND efermi BETWEEN $3 AND $4 AND is_gap_direct = $5", where)
		assert.Equal(t, []any{1.0, 3.0, -1.0, 1.0, true}, args)
	})

	t.Run("element set filters translate to array conditions", func(t *testing.T) {
		p := &query.ElectronicStructureParams{
			Chemsys:         []string{"Si-O"},
			Elements:        []string{"Si", "O"},
			ExcludeElements: []string{"Pb"},
		}

		where, args := buildWhere(p)

		assert.Equal(t, " WHERE chemsys = ANY($1::text[]) AND elements @> $2::text[] AND NOT (elements && $3::text[])", where)
		assert.Equal(t, []any{`{"Si-O"}`, `{"Si","O"}`, `{"Pb"}`}, args)
	})
}

func TestBuildOrderBy(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   string
	}{
		{
			name: "no sort fields defaults to material id",
			want: " ORDER BY material_id",
		},
		{
			name:   "descending prefix and tiebreaker",
			fields: []string{"-band_gap"},
			want:   " ORDER BY band_gap DESC, material_id",
		},
		{
			name:   "multiple fields keep request order",
			fields: []string{"formula_pretty", "-efermi"},
			want:   " ORDER BY formula_pretty, efermi DESC, material_id",
		},
		{
			name:   "unknown fields are dropped",
			fields: []string{"band_gap; DROP TABLE", "efermi"},
			want:   " ORDER BY efermi, material_id",
		},
		{
			name:   "explicit material id suppresses the tiebreaker",
			fields: []string{"-material_id"},
			want:   " ORDER BY material_id DESC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildOrderBy(tt.fields))
		})
	}
}

func TestPqStringArray(t *testing.T) {
	assert.Equal(t, `{"Si","GaAs"}`, pqStringArray([]string{"Si", "GaAs"}))
	assert.Equal(t, `{"a\"b"}`, pqStringArray([]string{`a"b`}))
}
