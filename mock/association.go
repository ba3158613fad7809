package mock

import (
	"context"

	"github.com/banseok/hajaro"
	"github.com/google/uuid"
)

// Compile-time interface check
var _ hajaro.AssociationService = (*AssociationService)(nil)

// AssociationService is a mock implementation of hajaro.AssociationService.
type AssociationService struct {
	ResolveAssignmentFn func(ctx context.Context, unitID uuid.UUID, workType string) (*hajaro.Association, error)
	AssignDutyFn        func(ctx context.Context, duty *hajaro.Association) error
	ListDutiesFn        func(ctx context.Context, contractorID uuid.UUID, partnerID *uuid.UUID) ([]*hajaro.Association, error)
	DeleteDutyFn        func(ctx context.Context, contractorID, dutyID uuid.UUID) error
	CreatePartnershipFn func(ctx context.Context, contractorID, partnerID uuid.UUID) (*hajaro.Partnership, error)
	ListPartnershipsFn  func(ctx context.Context, contractorID uuid.UUID) ([]*hajaro.Partnership, error)
}

func (s *AssociationService) ResolveAssignment(ctx context.Context, unitID uuid.UUID, workType string) (*hajaro.Association, error) {
	if s.ResolveAssignmentFn != nil {
		return s.ResolveAssignmentFn(ctx, unitID, workType)
	}
	return nil, hajaro.NotFound("no duty covers this unit and work type")
}

func (s *AssociationService) AssignDuty(ctx context.Context, duty *hajaro.Association) error {
	if s.AssignDutyFn != nil {
		return s.AssignDutyFn(ctx, duty)
	}
	return nil
}

func (s *AssociationService) ListDuties(ctx context.Context, contractorID uuid.UUID, partnerID *uuid.UUID) ([]*hajaro.Association, error) {
	if s.ListDutiesFn != nil {
		return s.ListDutiesFn(ctx, contractorID, partnerID)
	}
	return []*hajaro.Association{}, nil
}

func (s *AssociationService) DeleteDuty(ctx context.Context, contractorID, dutyID uuid.UUID) error {
	if s.DeleteDutyFn != nil {
		return s.DeleteDutyFn(ctx, contractorID, dutyID)
	}
	return nil
}

func (s *AssociationService) CreatePartnership(ctx context.Context, contractorID, partnerID uuid.UUID) (*hajaro.Partnership, error) {
	if s.CreatePartnershipFn != nil {
		return s.CreatePartnershipFn(ctx, contractorID, partnerID)
	}
	return &hajaro.Partnership{ID: uuid.New(), ContractorID: contractorID, PartnerID: partnerID}, nil
}

func (s *AssociationService) ListPartnerships(ctx context.Context, contractorID uuid.UUID) ([]*hajaro.Partnership, error) {
	if s.ListPartnershipsFn != nil {
		return s.ListPartnershipsFn(ctx, contractorID)
	}
	return []*hajaro.Partnership{}, nil
}
