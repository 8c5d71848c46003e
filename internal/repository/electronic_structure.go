package repository

import (
	"context"

	"matapi/internal/model"
	"matapi/internal/query"
)

// ElectronicStructureRepository defines data access for electronic structure
// documents. No business logic here — strictly document retrieval.
type ElectronicStructureRepository interface {
	// FindByMaterialID returns the document for one material. When fields are
	// given, only the named sub-documents ("bandstructure", "dos") are
	// populated; scalar summary columns are always returned.
	FindByMaterialID(ctx context.Context, materialID string, fields ...string) (*model.ElectronicStructureDoc, error)

	// List returns a filtered, paginated list of documents and the total row
	// count for the filter.
	List(ctx context.Context, p *query.ElectronicStructureParams, pq PageQuery) (*PageResult[model.ElectronicStructureDoc], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
