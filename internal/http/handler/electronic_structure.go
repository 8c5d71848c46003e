package handler

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"matapi/internal/model"
	"matapi/internal/objectstore"
	"matapi/internal/packed"
	"matapi/internal/query"
	"matapi/internal/service"
)

// GetElectronicStructureDoc returns the summary document for one material.
func GetElectronicStructureDoc(svc service.ElectronicStructureService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// SearchElectronicStructure translates request query parameters into search
// filters and returns matching documents.
func SearchElectronicStructure(svc service.ElectronicStructureService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		params, err := parseSearchParams(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FILTER", err.Error())
		}

		res, err := svc.Search(c.UserContext(), params, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetBandStructureObject returns the decoded band structure object, looked
// up either directly by task_id or through material_id resolution.
func GetBandStructureObject(svc service.ElectronicStructureService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if taskID := c.Query("task_id"); taskID != "" {
			obj, err := svc.GetBandStructureByTask(c.UserContext(), taskID)
			if err != nil {
				return writeServiceError(c, err)
			}
			return c.JSON(obj)
		}

		materialID := c.Query("material_id")
		if materialID == "" {
			return writeError(c, fiber.StatusBadRequest, "ID_REQUIRED", "task_id or material_id is required")
		}

		pathType := model.PathSetyawanCurtarolo
		if raw := c.Query("path_type"); raw != "" {
			pt, ok := model.ParseBSPathType(raw)
			if !ok {
				return writeError(c, fiber.StatusBadRequest, "INVALID_PATH_TYPE", "unknown path type: "+raw)
			}
			pathType = pt
		}

		lineMode := true
		if raw := c.Query("line_mode"); raw != "" {
			lm, err := strconv.ParseBool(raw)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_LINE_MODE", "invalid line_mode")
			}
			lineMode = lm
		}

		obj, err := svc.GetBandStructure(c.UserContext(), materialID, pathType, lineMode)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(obj)
	}
}

// GetDosObject returns the decoded density-of-states object, looked up
// either directly by task_id or through material_id resolution.
func GetDosObject(svc service.ElectronicStructureService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if taskID := c.Query("task_id"); taskID != "" {
			obj, err := svc.GetDosByTask(c.UserContext(), taskID)
			if err != nil {
				return writeServiceError(c, err)
			}
			return c.JSON(obj)
		}

		materialID := c.Query("material_id")
		if materialID == "" {
			return writeError(c, fiber.StatusBadRequest, "ID_REQUIRED", "task_id or material_id is required")
		}

		obj, err := svc.GetDos(c.UserContext(), materialID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(obj)
	}
}

func parseSearchParams(c *fiber.Ctx) (*query.ElectronicStructureParams, error) {
	p := &query.ElectronicStructureParams{}

	gap, err := parseRange(c, "band_gap")
	if err != nil {
		return nil, err
	}
	p.BandGap = gap

	efermi, err := parseRange(c, "efermi")
	if err != nil {
		return nil, err
	}
	p.Efermi = efermi

	p.Formula = splitList(c.Query("formula"))
	p.Chemsys = splitList(c.Query("chemsys"))
	p.Elements = splitList(c.Query("elements"))
	p.ExcludeElements = splitList(c.Query("exclude_elements"))
	p.SortFields = splitList(c.Query("_sort_fields"))

	if raw := c.Query("is_gap_direct"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.New("invalid is_gap_direct")
		}
		p.IsGapDirect = &b
	}
	if raw := c.Query("is_metal"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.New("invalid is_metal")
		}
		p.IsMetal = &b
	}
	if raw := c.Query("magnetic_ordering"); raw != "" {
		p.MagneticOrdering = model.Ordering(raw)
	}
	return p, nil
}

func parseRange(c *fiber.Ctx, field string) (*query.FloatRange, error) {
	minRaw := c.Query(field + "_min")
	maxRaw := c.Query(field + "_max")
	if minRaw == "" && maxRaw == "" {
		return nil, nil
	}
	if minRaw == "" || maxRaw == "" {
		return nil, errors.New(field + " range requires both min and max")
	}
	minVal, err := strconv.ParseFloat(minRaw, 64)
	if err != nil {
		return nil, errors.New("invalid " + field + "_min")
	}
	maxVal, err := strconv.ParseFloat(maxRaw, 64)
	if err != nil {
		return nil, errors.New("invalid " + field + "_max")
	}
	return &query.FloatRange{Min: minVal, Max: maxVal}, nil
}

// writeServiceError maps core errors onto the HTTP error envelope. Missing
// documents and missing objects are both 404s with distinct codes; upstream
// data corruption surfaces as a bad gateway rather than a server bug.
func writeServiceError(c *fiber.Ctx, err error) error {
	var (
		notFound  *service.NotFoundError
		malformed *service.MalformedDocumentError
		decodeErr *packed.DecodeError
	)
	switch {
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "ID_REQUIRED", err.Error())
	case errors.As(err, &notFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", notFound.Msg)
	case errors.Is(err, sql.ErrNoRows):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "material not found")
	case errors.Is(err, objectstore.ErrNoObject):
		return writeError(c, fiber.StatusNotFound, "NO_OBJECT", err.Error())
	case errors.As(err, &malformed):
		return writeError(c, fiber.StatusBadGateway, "MALFORMED_DOCUMENT", malformed.Error())
	case errors.As(err, &decodeErr):
		return writeError(c, fiber.StatusBadGateway, "OBJECT_DECODE_ERROR", decodeErr.Error())
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
