package mock

import (
	"context"

	"github.com/banseok/hajaro"
	"github.com/google/uuid"
)

// Compile-time interface checks
var (
	_ hajaro.ContractorService = (*ContractorService)(nil)
	_ hajaro.PartnerService    = (*PartnerService)(nil)
)

// ContractorService is a mock implementation of hajaro.ContractorService.
type ContractorService struct {
	FindContractorByIDFn func(ctx context.Context, id uuid.UUID) (*hajaro.Contractor, error)
	ListWorkTypesFn      func(ctx context.Context, contractorID uuid.UUID) ([]*hajaro.WorkType, error)
	CreateWorkTypeFn     func(ctx context.Context, contractorID uuid.UUID, workType string) (*hajaro.WorkType, error)
	AddWorkDetailFn      func(ctx context.Context, contractorID uuid.UUID, workType, detail string) (*hajaro.WorkType, error)
}

func (s *ContractorService) FindContractorByID(ctx context.Context, id uuid.UUID) (*hajaro.Contractor, error) {
	if s.FindContractorByIDFn != nil {
		return s.FindContractorByIDFn(ctx, id)
	}
	return nil, hajaro.NotFound("contractor not found")
}

func (s *ContractorService) ListWorkTypes(ctx context.Context, contractorID uuid.UUID) ([]*hajaro.WorkType, error) {
	if s.ListWorkTypesFn != nil {
		return s.ListWorkTypesFn(ctx, contractorID)
	}
	return []*hajaro.WorkType{}, nil
}

func (s *ContractorService) CreateWorkType(ctx context.Context, contractorID uuid.UUID, workType string) (*hajaro.WorkType, error) {
	if s.CreateWorkTypeFn != nil {
		return s.CreateWorkTypeFn(ctx, contractorID, workType)
	}
	return nil, hajaro.Internal("not implemented", nil)
}

func (s *ContractorService) AddWorkDetail(ctx context.Context, contractorID uuid.UUID, workType, detail string) (*hajaro.WorkType, error) {
	if s.AddWorkDetailFn != nil {
		return s.AddWorkDetailFn(ctx, contractorID, workType, detail)
	}
	return nil, hajaro.Internal("not implemented", nil)
}

// PartnerService is a mock implementation of hajaro.PartnerService.
type PartnerService struct {
	FindPartnerByIDFn          func(ctx context.Context, id uuid.UUID) (*hajaro.Partner, error)
	ListPartnersByContractorFn func(ctx context.Context, contractorID uuid.UUID) ([]*hajaro.Partner, error)
	GetDefectStatsFn           func(ctx context.Context, partnerID uuid.UUID) (*hajaro.PartnerDefectStats, error)
}

func (s *PartnerService) FindPartnerByID(ctx context.Context, id uuid.UUID) (*hajaro.Partner, error) {
	if s.FindPartnerByIDFn != nil {
		return s.FindPartnerByIDFn(ctx, id)
	}
	return nil, hajaro.NotFound("partner not found")
}

func (s *PartnerService) ListPartnersByContractor(ctx context.Context, contractorID uuid.UUID) ([]*hajaro.Partner, error) {
	if s.ListPartnersByContractorFn != nil {
		return s.ListPartnersByContractorFn(ctx, contractorID)
	}
	return []*hajaro.Partner{}, nil
}

func (s *PartnerService) GetDefectStats(ctx context.Context, partnerID uuid.UUID) (*hajaro.PartnerDefectStats, error) {
	if s.GetDefectStatsFn != nil {
		return s.GetDefectStatsFn(ctx, partnerID)
	}
	return &hajaro.PartnerDefectStats{}, nil
}
