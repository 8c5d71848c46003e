package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"matapi/internal/model"
	"matapi/internal/objectstore"
	"matapi/internal/packed"
	"matapi/internal/query"
	"matapi/internal/service"
	serviceMocks "matapi/internal/service/mocks"
)

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetElectronicStructureDoc(t *testing.T) {
	mockSvc := new(serviceMocks.MockElectronicStructureService)
	app := fiber.New()
	app.Get("/materials/electronic_structure/:id", GetElectronicStructureDoc(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "mp-149").
			Return(&model.ElectronicStructureDoc{MaterialID: "mp-149", FormulaPretty: "Si"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/materials/electronic_structure/mp-149", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var doc model.ElectronicStructureDoc
		json.NewDecoder(resp.Body).Decode(&doc)
		assert.Equal(t, "mp-149", doc.MaterialID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "mp-0").Return(nil, sql.ErrNoRows).Once()

		req := httptest.NewRequest(http.MethodGet, "/materials/electronic_structure/mp-0", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestSearchElectronicStructure(t *testing.T) {
	mockSvc := new(serviceMocks.MockElectronicStructureService)
	app := fiber.New()
	app.Get("/materials/electronic_structure", SearchElectronicStructure(mockSvc))

	t.Run("success with filters", func(t *testing.T) {
		expectedRes := &service.ElectronicStructureListResult{
			Items: []model.ElectronicStructureDoc{{MaterialID: "mp-149", FormulaPretty: "Si"}},
			Total: 1,
		}
		mockSvc.On("Search", mock.Anything, mock.MatchedBy(func(p *query.ElectronicStructureParams) bool {
			return p.BandGap != nil && p.BandGap.Min == 0.5 && p.BandGap.Max == 2 &&
				len(p.Formula) == 2 && p.IsMetal != nil && !*p.IsMetal
		}), 10, 0).Return(expectedRes, nil).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/materials/electronic_structure?band_gap_min=0.5&band_gap_max=2&formula=Si,GaAs&is_metal=false", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.ElectronicStructureListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/materials/electronic_structure?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_LIMIT", body.Error.Code)
	})

	t.Run("half-open range rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/materials/electronic_structure?band_gap_min=0.5", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_FILTER", body.Error.Code)
		assert.Contains(t, body.Error.Message, "band_gap range requires both min and max")
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Search", mock.Anything, mock.Anything, 10, 0).
			Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/materials/electronic_structure", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetBandStructureObject(t *testing.T) {
	mockSvc := new(serviceMocks.MockElectronicStructureService)
	app := fiber.New()
	app.Get("/materials/electronic_structure/bandstructure/object", GetBandStructureObject(mockSvc))

	symmLine := &model.BandStructureSymmLine{
		BandStructure: model.BandStructure{Efermi: 5.2},
		LabelsDict:    map[string][]float64{"X": {0.5, 0, 0}},
	}

	t.Run("by task id", func(t *testing.T) {
		mockSvc.On("GetBandStructureByTask", mock.Anything, "mp-149-bs").Return(symmLine, nil).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/materials/electronic_structure/bandstructure/object?task_id=mp-149-bs", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("by material id with defaults", func(t *testing.T) {
		mockSvc.On("GetBandStructure", mock.Anything, "mp-149", model.PathSetyawanCurtarolo, true).
			Return(symmLine, nil).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/materials/electronic_structure/bandstructure/object?material_id=mp-149", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("uniform mode", func(t *testing.T) {
		mockSvc.On("GetBandStructure", mock.Anything, "mp-149", model.PathHinuma, false).
			Return(&symmLine.BandStructure, nil).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/materials/electronic_structure/bandstructure/object?material_id=mp-149&path_type=hinuma&line_mode=false", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing ids", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/materials/electronic_structure/bandstructure/object", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "ID_REQUIRED", body.Error.Code)
	})

	t.Run("unknown path type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/materials/electronic_structure/bandstructure/object?material_id=mp-149&path_type=bogus", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_PATH_TYPE", body.Error.Code)
	})

	t.Run("no band structure for material", func(t *testing.T) {
		mockSvc.On("GetBandStructure", mock.Anything, "mp-2", model.PathSetyawanCurtarolo, true).
			Return(nil, &service.NotFoundError{Msg: "no setyawan_curtarolo band structure data found for mp-2"}).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/materials/electronic_structure/bandstructure/object?material_id=mp-2", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
		assert.Equal(t, "no setyawan_curtarolo band structure data found for mp-2", body.Error.Message)
		mockSvc.AssertExpectations(t)
	})

	t.Run("object missing from store", func(t *testing.T) {
		mockSvc.On("GetBandStructureByTask", mock.Anything, "mp-gone").
			Return(nil, objectstore.ErrNoObject).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/materials/electronic_structure/bandstructure/object?task_id=mp-gone", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "NO_OBJECT", body.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("corrupt stored payload", func(t *testing.T) {
		mockSvc.On("GetBandStructureByTask", mock.Anything, "mp-bad").
			Return(nil, &packed.DecodeError{Stage: packed.StageInflate, Err: errors.New("unexpected EOF")}).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/materials/electronic_structure/bandstructure/object?task_id=mp-bad", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "OBJECT_DECODE_ERROR", body.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetDosObject(t *testing.T) {
	mockSvc := new(serviceMocks.MockElectronicStructureService)
	app := fiber.New()
	app.Get("/materials/electronic_structure/dos/object", GetDosObject(mockSvc))

	completeDos := &model.CompleteDos{
		Dos: model.Dos{Efermi: 2.1, Energies: []float64{-1, 0, 1}},
	}

	t.Run("by material id", func(t *testing.T) {
		mockSvc.On("GetDos", mock.Anything, "mp-149").Return(completeDos, nil).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/materials/electronic_structure/dos/object?material_id=mp-149", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("by task id", func(t *testing.T) {
		mockSvc.On("GetDosByTask", mock.Anything, "mp-2").Return(completeDos, nil).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/materials/electronic_structure/dos/object?task_id=mp-2", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing ids", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/materials/electronic_structure/dos/object", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("malformed document", func(t *testing.T) {
		mockSvc.On("GetDos", mock.Anything, "mp-9").
			Return(nil, &service.MalformedDocumentError{MaterialID: "mp-9", Field: `dos.total has no spin channel "1"`}).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/materials/electronic_structure/dos/object?material_id=mp-9", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "MALFORMED_DOCUMENT", body.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}
