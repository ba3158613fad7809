package mock

import (
	"context"

	"github.com/banseok/hajaro"
	"github.com/google/uuid"
)

// Compile-time interface check
var _ hajaro.ApartmentService = (*ApartmentService)(nil)

// ApartmentService is a mock implementation of hajaro.ApartmentService.
type ApartmentService struct {
	FindComplexByIDFn func(ctx context.Context, id uuid.UUID) (*hajaro.Complex, error)
	SearchComplexesFn func(ctx context.Context, contractorID uuid.UUID, query string) ([]*hajaro.Complex, error)
	ListDongsFn       func(ctx context.Context, complexID uuid.UUID) ([]string, error)
	ListHosFn         func(ctx context.Context, complexID uuid.UUID, dong string) ([]string, error)
	FindUnitByIDFn    func(ctx context.Context, id uuid.UUID) (*hajaro.Unit, error)
	FindUnitFn        func(ctx context.Context, complexID uuid.UUID, dong, ho string) (*hajaro.Unit, error)
}

func (s *ApartmentService) FindComplexByID(ctx context.Context, id uuid.UUID) (*hajaro.Complex, error) {
	if s.FindComplexByIDFn != nil {
		return s.FindComplexByIDFn(ctx, id)
	}
	return nil, hajaro.NotFound("complex not found")
}

func (s *ApartmentService) SearchComplexes(ctx context.Context, contractorID uuid.UUID, query string) ([]*hajaro.Complex, error) {
	if s.SearchComplexesFn != nil {
		return s.SearchComplexesFn(ctx, contractorID, query)
	}
	return []*hajaro.Complex{}, nil
}

func (s *ApartmentService) ListDongs(ctx context.Context, complexID uuid.UUID) ([]string, error) {
	if s.ListDongsFn != nil {
		return s.ListDongsFn(ctx, complexID)
	}
	return []string{}, nil
}

func (s *ApartmentService) ListHos(ctx context.Context, complexID uuid.UUID, dong string) ([]string, error) {
	if s.ListHosFn != nil {
		return s.ListHosFn(ctx, complexID, dong)
	}
	return []string{}, nil
}

func (s *ApartmentService) FindUnitByID(ctx context.Context, id uuid.UUID) (*hajaro.Unit, error) {
	if s.FindUnitByIDFn != nil {
		return s.FindUnitByIDFn(ctx, id)
	}
	return nil, hajaro.NotFound("unit not found")
}

func (s *ApartmentService) FindUnit(ctx context.Context, complexID uuid.UUID, dong, ho string) (*hajaro.Unit, error) {
	if s.FindUnitFn != nil {
		return s.FindUnitFn(ctx, complexID, dong, ho)
	}
	return nil, hajaro.NotFound("unit not found")
}
