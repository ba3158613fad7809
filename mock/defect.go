package mock

import (
	"context"

	"github.com/banseok/hajaro"
	"github.com/google/uuid"
)

// Compile-time interface check
var _ hajaro.DefectService = (*DefectService)(nil)

// DefectService is a mock implementation of hajaro.DefectService.
type DefectService struct {
	CreateDefectFn            func(ctx context.Context, defect *hajaro.Defect) error
	FindDefectByIDFn          func(ctx context.Context, id uuid.UUID) (*hajaro.Defect, error)
	FindDefectsFn             func(ctx context.Context, filter hajaro.DefectFilter) (*hajaro.DefectPage, error)
	FindDefectsByUnitFn       func(ctx context.Context, residentID, unitID uuid.UUID) ([]*hajaro.Defect, error)
	AssignPartnerFn           func(ctx context.Context, contractorID, defectID, partnerID uuid.UUID) error
	AssignEngineerFn          func(ctx context.Context, partnerID, defectID, engineerID uuid.UUID) error
	RejectByPartnerAdminFn    func(ctx context.Context, partnerID, defectID uuid.UUID) error
	RejectByEngineerFn        func(ctx context.Context, engineerID, defectID uuid.UUID, reason string) error
	MarkRepairedFn            func(ctx context.Context, engineerID, defectID uuid.UUID, repairedImage string) error
	ConfirmByResidentFn       func(ctx context.Context, residentID, defectID uuid.UUID, signature string) error
	CancelByResidentFn        func(ctx context.Context, residentID, defectID uuid.UUID) error
	CountByStatusForPartnerFn func(ctx context.Context, partnerID uuid.UUID) (map[string]int, error)
	FindCriticalDefectsFn     func(ctx context.Context, contractorID uuid.UUID, page int) ([]*hajaro.Defect, int, error)
	CountRecentByDayFn        func(ctx context.Context, days int) ([]*hajaro.DailyDefectCount, error)
	FindEngineerComplexesFn   func(ctx context.Context, engineerID uuid.UUID) ([]*hajaro.EngineerComplexSummary, error)
	FindEngineerTasksFn       func(ctx context.Context, engineerID, complexID uuid.UUID, filter hajaro.DefectFilter) ([]*hajaro.DongTaskGroup, error)
}

func (s *DefectService) CreateDefect(ctx context.Context, defect *hajaro.Defect) error {
	if s.CreateDefectFn != nil {
		return s.CreateDefectFn(ctx, defect)
	}
	return nil
}

func (s *DefectService) FindDefectByID(ctx context.Context, id uuid.UUID) (*hajaro.Defect, error) {
	if s.FindDefectByIDFn != nil {
		return s.FindDefectByIDFn(ctx, id)
	}
	return nil, hajaro.NotFound("defect not found")
}

func (s *DefectService) FindDefects(ctx context.Context, filter hajaro.DefectFilter) (*hajaro.DefectPage, error) {
	if s.FindDefectsFn != nil {
		return s.FindDefectsFn(ctx, filter)
	}
	return &hajaro.DefectPage{Groups: []*hajaro.UnitDefectGroup{}}, nil
}

func (s *DefectService) FindDefectsByUnit(ctx context.Context, residentID, unitID uuid.UUID) ([]*hajaro.Defect, error) {
	if s.FindDefectsByUnitFn != nil {
		return s.FindDefectsByUnitFn(ctx, residentID, unitID)
	}
	return []*hajaro.Defect{}, nil
}

func (s *DefectService) AssignPartner(ctx context.Context, contractorID, defectID, partnerID uuid.UUID) error {
	if s.AssignPartnerFn != nil {
		return s.AssignPartnerFn(ctx, contractorID, defectID, partnerID)
	}
	return nil
}

func (s *DefectService) AssignEngineer(ctx context.Context, partnerID, defectID, engineerID uuid.UUID) error {
	if s.AssignEngineerFn != nil {
		return s.AssignEngineerFn(ctx, partnerID, defectID, engineerID)
	}
	return nil
}

func (s *DefectService) RejectByPartnerAdmin(ctx context.Context, partnerID, defectID uuid.UUID) error {
	if s.RejectByPartnerAdminFn != nil {
		return s.RejectByPartnerAdminFn(ctx, partnerID, defectID)
	}
	return nil
}

func (s *DefectService) RejectByEngineer(ctx context.Context, engineerID, defectID uuid.UUID, reason string) error {
	if s.RejectByEngineerFn != nil {
		return s.RejectByEngineerFn(ctx, engineerID, defectID, reason)
	}
	return nil
}

func (s *DefectService) MarkRepaired(ctx context.Context, engineerID, defectID uuid.UUID, repairedImage string) error {
	if s.MarkRepairedFn != nil {
		return s.MarkRepairedFn(ctx, engineerID, defectID, repairedImage)
	}
	return nil
}

func (s *DefectService) ConfirmByResident(ctx context.Context, residentID, defectID uuid.UUID, signature string) error {
	if s.ConfirmByResidentFn != nil {
		return s.ConfirmByResidentFn(ctx, residentID, defectID, signature)
	}
	return nil
}

func (s *DefectService) CancelByResident(ctx context.Context, residentID, defectID uuid.UUID) error {
	if s.CancelByResidentFn != nil {
		return s.CancelByResidentFn(ctx, residentID, defectID)
	}
	return nil
}

func (s *DefectService) CountByStatusForPartner(ctx context.Context, partnerID uuid.UUID) (map[string]int, error) {
	if s.CountByStatusForPartnerFn != nil {
		return s.CountByStatusForPartnerFn(ctx, partnerID)
	}
	return map[string]int{}, nil
}

func (s *DefectService) FindCriticalDefects(ctx context.Context, contractorID uuid.UUID, page int) ([]*hajaro.Defect, int, error) {
	if s.FindCriticalDefectsFn != nil {
		return s.FindCriticalDefectsFn(ctx, contractorID, page)
	}
	return []*hajaro.Defect{}, 0, nil
}

func (s *DefectService) CountRecentByDay(ctx context.Context, days int) ([]*hajaro.DailyDefectCount, error) {
	if s.CountRecentByDayFn != nil {
		return s.CountRecentByDayFn(ctx, days)
	}
	return []*hajaro.DailyDefectCount{}, nil
}

func (s *DefectService) FindEngineerComplexes(ctx context.Context, engineerID uuid.UUID) ([]*hajaro.EngineerComplexSummary, error) {
	if s.FindEngineerComplexesFn != nil {
		return s.FindEngineerComplexesFn(ctx, engineerID)
	}
	return []*hajaro.EngineerComplexSummary{}, nil
}

func (s *DefectService) FindEngineerTasks(ctx context.Context, engineerID, complexID uuid.UUID, filter hajaro.DefectFilter) ([]*hajaro.DongTaskGroup, error) {
	if s.FindEngineerTasksFn != nil {
		return s.FindEngineerTasksFn(ctx, engineerID, complexID, filter)
	}
	return []*hajaro.DongTaskGroup{}, nil
}
