package service

import (
	"context"
	"fmt"

	"matapi/internal/model"
	"matapi/internal/objectstore"
	"matapi/internal/packed"
	"matapi/internal/query"
	"matapi/internal/repository"
)

// ElectronicStructureListResult is the service-level DTO for paginated documents.
type ElectronicStructureListResult struct {
	Items []model.ElectronicStructureDoc `json:"data"`
	Total int                            `json:"total"`
}

// ElectronicStructureService defines the use cases for electronic structure
// data: document lookup, filtered search, and retrieval of decoded band
// structure / density-of-states objects.
type ElectronicStructureService interface {
	// Get returns the summary document for one material.
	Get(ctx context.Context, materialID string) (*model.ElectronicStructureDoc, error)

	// Search returns documents matching the translated filter parameters.
	Search(ctx context.Context, p *query.ElectronicStructureParams, limit, offset int) (*ElectronicStructureListResult, error)

	// GetBandStructure resolves the calculation task owning the requested
	// band structure, fetches its stored object and decodes it. Line mode
	// returns a BandStructureSymmLine; uniform mode a BandStructure.
	GetBandStructure(ctx context.Context, materialID string, pathType model.BSPathType, lineMode bool) (model.Object, error)

	// GetBandStructureByTask skips resolution for callers that already hold
	// a task id.
	GetBandStructureByTask(ctx context.Context, taskID string) (model.Object, error)

	// GetDos returns the decoded complete density of states for a material.
	GetDos(ctx context.Context, materialID string) (model.Object, error)

	// GetDosByTask skips resolution for callers that already hold a task id.
	GetDosByTask(ctx context.Context, taskID string) (model.Object, error)
}

// electronicStructureService is a concrete implementation of
// ElectronicStructureService. It holds no per-call state; concurrent
// retrievals are independent and no result is cached.
type electronicStructureService struct {
	repo  repository.ElectronicStructureRepository
	store objectstore.ObjectStore
}

// NewElectronicStructureService constructs a new ElectronicStructureService.
func NewElectronicStructureService(repo repository.ElectronicStructureRepository, store objectstore.ObjectStore) ElectronicStructureService {
	return &electronicStructureService{repo: repo, store: store}
}

func (s *electronicStructureService) Get(ctx context.Context, materialID string) (*model.ElectronicStructureDoc, error) {
	if materialID == "" {
		return nil, ErrIDRequired
	}
	return s.repo.FindByMaterialID(ctx, materialID)
}

func (s *electronicStructureService) Search(ctx context.Context, p *query.ElectronicStructureParams, limit, offset int) (*ElectronicStructureListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, p, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ElectronicStructureListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *electronicStructureService) GetBandStructure(ctx context.Context, materialID string, pathType model.BSPathType, lineMode bool) (model.Object, error) {
	if materialID == "" {
		return nil, ErrIDRequired
	}

	field := "bandstructure"
	if !lineMode {
		field = "dos"
	}
	doc, err := s.repo.FindByMaterialID(ctx, materialID, field)
	if err != nil {
		return nil, err
	}

	taskID, err := resolveBandStructureTask(doc, pathType, lineMode)
	if err != nil {
		return nil, err
	}
	return s.fetchAndDecode(ctx, taskID)
}

func (s *electronicStructureService) GetBandStructureByTask(ctx context.Context, taskID string) (model.Object, error) {
	if taskID == "" {
		return nil, ErrIDRequired
	}
	return s.fetchAndDecode(ctx, taskID)
}

func (s *electronicStructureService) GetDos(ctx context.Context, materialID string) (model.Object, error) {
	if materialID == "" {
		return nil, ErrIDRequired
	}

	doc, err := s.repo.FindByMaterialID(ctx, materialID, "dos")
	if err != nil {
		return nil, err
	}

	taskID, err := resolveDosTask(doc)
	if err != nil {
		return nil, err
	}
	return s.fetchAndDecode(ctx, taskID)
}

func (s *electronicStructureService) GetDosByTask(ctx context.Context, taskID string) (model.Object, error) {
	if taskID == "" {
		return nil, ErrIDRequired
	}
	return s.fetchAndDecode(ctx, taskID)
}

// fetchAndDecode is the tail of every retrieval: object fetch followed by
// payload decode. Stage failures pass through unmodified. An empty payload
// collection counts as a missing object, whatever the store returned.
func (s *electronicStructureService) fetchAndDecode(ctx context.Context, taskID string) (model.Object, error) {
	raw, err := s.store.FetchObject(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("task %s: %w", taskID, objectstore.ErrNoObject)
	}
	return packed.Decode(raw[0])
}

// resolveBandStructureTask finds the calculation task id owning the band
// structure of the requested shape. The uniform branch reads the dos summary;
// that mirrors how the data is actually stored upstream and is intentional.
func resolveBandStructureTask(doc *model.ElectronicStructureDoc, pathType model.BSPathType, lineMode bool) (string, error) {
	if !lineMode {
		if doc.Dos == nil || len(doc.Dos.Total) == 0 {
			return "", notFoundf("no uniform band structure data found for %s", doc.MaterialID)
		}
		entry, ok := doc.Dos.Total[string(model.SpinUp)]
		if !ok {
			return "", &MalformedDocumentError{MaterialID: doc.MaterialID, Field: "dos.total has no spin channel \"1\""}
		}
		return entry.TaskID, nil
	}

	if doc.BandStructure == nil {
		return "", notFoundf("no %s band structure data found for %s", pathType, doc.MaterialID)
	}
	entry, ok := (*doc.BandStructure)[pathType]
	if !ok {
		return "", notFoundf("no %s band structure data found for %s", pathType, doc.MaterialID)
	}
	return entry.TaskID, nil
}

// resolveDosTask finds the calculation task id owning the total density of
// states. The total -> "1" descent is an invariant of stored documents; a
// total bucket without the spin channel is malformed, not missing.
func resolveDosTask(doc *model.ElectronicStructureDoc) (string, error) {
	if doc.Dos == nil {
		return "", notFoundf("no density of states data found for %s", doc.MaterialID)
	}
	entry, ok := doc.Dos.Total[string(model.SpinUp)]
	if !ok {
		return "", &MalformedDocumentError{MaterialID: doc.MaterialID, Field: "dos.total has no spin channel \"1\""}
	}
	return entry.TaskID, nil
}
