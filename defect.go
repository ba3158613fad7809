package hajaro

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DefaultPageSize is the fixed page size for all paginated defect queries.
const DefaultPageSize = 10

// Defect represents a reported post-construction defect in one apartment unit.
type Defect struct {
	ID           uuid.UUID    `json:"id"`
	ContractorID uuid.UUID    `json:"contractorId"`
	ComplexID    uuid.UUID    `json:"complexId"`
	UnitID       uuid.UUID    `json:"unitId"`
	ResidentID   uuid.UUID    `json:"residentId"`
	Address      string       `json:"address"`
	Location     string       `json:"location"`
	Work         Work         `json:"work"`
	Coordinate   *Coordinate  `json:"coordinate,omitempty"`
	Status       DefectStatus `json:"status"`

	// Per-stage file references. Requested is set at creation, the rest
	// as the lifecycle advances.
	RequestedImage string  `json:"requestedImage"`
	RepairedImage  *string `json:"repairedImage"`
	ConfirmedImage *string `json:"confirmedImage"`

	// Per-stage timestamps. RepairedAt is stamped exactly once, when the
	// defect enters REPAIRED, and never reset.
	RequestedAt time.Time  `json:"requestedAt"`
	RepairedAt  *time.Time `json:"repairedAt"`
	ConfirmedAt *time.Time `json:"confirmedAt"`

	// Current responsible partner company and, once scheduled, the
	// specific engineer within it. Both nil until assigned. The engineer
	// is cleared when a partner admin rejects the assignment but kept
	// when the engineer rejects their own task.
	AssignedPartnerID  *uuid.UUID `json:"assignedPartnerId"`
	AssignedEngineerID *uuid.UUID `json:"assignedEngineerId"`

	// Signature is non-nil iff the defect is CONFIRMED.
	Signature *string `json:"signature"`

	// RejectedReason is populated only by an engineer-initiated rejection.
	RejectedReason *string `json:"rejectedReason,omitempty"`

	// Joined fields (populated by some queries)
	Complex  *Complex `json:"complex,omitempty"`
	Unit     *Unit    `json:"unit,omitempty"`
	Resident *User    `json:"resident,omitempty"`
	Partner  *Partner `json:"partner,omitempty"`
	Engineer *User    `json:"engineer,omitempty"`
}

// Work categorizes a defect by trade.
type Work struct {
	Type           string `json:"type"`
	Detail         string `json:"detail"`
	AdditionalInfo string `json:"additionalInfo,omitempty"`
}

// Coordinate locates a defect inside the 3D viewer model. Opaque to the
// lifecycle engine; stored and echoed back as-is.
type Coordinate struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Z           float64 `json:"z"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	SourceImage string  `json:"sourceImage,omitempty"`
}

// DefectStatus represents the raw lifecycle status of a defect.
type DefectStatus string

const (
	DefectStatusPartnerNotAssigned DefectStatus = "PARTNER_NOT_ASSIGNED"
	DefectStatusPartnerAssigned    DefectStatus = "PARTNER_ASSIGNED"
	DefectStatusScheduled          DefectStatus = "SCHEDULED"
	DefectStatusRejected           DefectStatus = "REJECTED"
	DefectStatusCanceled           DefectStatus = "CANCELED"
	DefectStatusRepaired           DefectStatus = "REPAIRED"
	DefectStatusConfirmed          DefectStatus = "CONFIRMED"
)

// AllDefectStatuses lists every raw status. Projection tables are verified
// against this set.
var AllDefectStatuses = []DefectStatus{
	DefectStatusPartnerNotAssigned,
	DefectStatusPartnerAssigned,
	DefectStatusScheduled,
	DefectStatusRejected,
	DefectStatusCanceled,
	DefectStatusRepaired,
	DefectStatusConfirmed,
}

// IsTerminal returns true if no further transition is legal from this status.
func (s DefectStatus) IsTerminal() bool {
	return s == DefectStatusCanceled || s == DefectStatusConfirmed
}

// Valid returns true if s is one of the seven raw statuses.
func (s DefectStatus) Valid() bool {
	for _, known := range AllDefectStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// DefectService defines the defect lifecycle and query operations.
type DefectService interface {
	// CreateDefect creates a defect from a resident report. The initial
	// status is PARTNER_ASSIGNED when an association covers the unit and
	// work type, PARTNER_NOT_ASSIGNED otherwise.
	CreateDefect(ctx context.Context, defect *Defect) error

	// FindDefectByID retrieves a defect with its joined reference data.
	// Returns ENOTFOUND if the defect does not exist.
	FindDefectByID(ctx context.Context, id uuid.UUID) (*Defect, error)

	// FindDefects retrieves defects grouped by unit, sorted by complex
	// name, dong, ho, and paginated. The filter's owner scope is
	// mandatory; TotalPages comes from a separate counting query.
	FindDefects(ctx context.Context, filter DefectFilter) (*DefectPage, error)

	// FindDefectsByUnit retrieves a resident's defects within one unit,
	// newest first. Returns ENOTFOUND if the unit is not the resident's.
	FindDefectsByUnit(ctx context.Context, residentID, unitID uuid.UUID) ([]*Defect, error)

	// AssignPartner transitions a defect to PARTNER_ASSIGNED for the
	// given partner. Legal only from PARTNER_NOT_ASSIGNED or
	// PARTNER_ASSIGNED; the caller must be the owning contractor.
	AssignPartner(ctx context.Context, contractorID, defectID, partnerID uuid.UUID) error

	// AssignEngineer transitions PARTNER_ASSIGNED -> SCHEDULED and
	// records the engineer. Returns ENOTFOUND if the defect is not owned
	// by the calling partner, ENOTALLOWED on an illegal transition, and
	// ECONFLICT if a concurrent transition won the race.
	AssignEngineer(ctx context.Context, partnerID, defectID, engineerID uuid.UUID) error

	// RejectByPartnerAdmin transitions a reject-eligible defect to
	// REJECTED and clears the engineer assignment. Returns EFORBIDDEN
	// when the current status is outside the partner REJECT_AVAILABLE
	// bucket.
	RejectByPartnerAdmin(ctx context.Context, partnerID, defectID uuid.UUID) error

	// RejectByEngineer transitions SCHEDULED -> REJECTED, records the
	// reason, and keeps the engineer assignment. Requires exact status
	// SCHEDULED (ENOTALLOWED otherwise) and exact caller-engineer match
	// (ENOTFOUND otherwise).
	RejectByEngineer(ctx context.Context, engineerID, defectID uuid.UUID, reason string) error

	// MarkRepaired transitions SCHEDULED -> REPAIRED, stamping the
	// repaired image and timestamp. The caller must be the assigned
	// engineer.
	MarkRepaired(ctx context.Context, engineerID, defectID uuid.UUID, repairedImage string) error

	// ConfirmByResident transitions REPAIRED -> CONFIRMED with the
	// resident's signature. Returns ENOTALLOWED unless the current
	// status is exactly REPAIRED.
	ConfirmByResident(ctx context.Context, residentID, defectID uuid.UUID, signature string) error

	// CancelByResident withdraws a defect report. Legal from the
	// resident CANCEL_AVAILABLE bucket only.
	CancelByResident(ctx context.Context, residentID, defectID uuid.UUID) error

	// CountByStatusForPartner returns the partner-admin bucket counts
	// for one partner's defects.
	CountByStatusForPartner(ctx context.Context, partnerID uuid.UUID) (map[string]int, error)

	// FindCriticalDefects retrieves a contractor's defects that demand
	// attention (REJECTED and PARTNER_NOT_ASSIGNED), paginated.
	FindCriticalDefects(ctx context.Context, contractorID uuid.UUID, page int) ([]*Defect, int, error)

	// CountRecentByDay returns per-day, per-status creation counts over
	// the trailing number of days, for the platform dashboard.
	CountRecentByDay(ctx context.Context, days int) ([]*DailyDefectCount, error)

	// FindEngineerComplexes lists the complexes where the engineer has
	// scheduled tasks, with per-complex counts.
	FindEngineerComplexes(ctx context.Context, engineerID uuid.UUID) ([]*EngineerComplexSummary, error)

	// FindEngineerTasks retrieves an engineer's tasks in one complex,
	// grouped by dong then ho, with per-bucket counts.
	FindEngineerTasks(ctx context.Context, engineerID, complexID uuid.UUID, filter DefectFilter) ([]*DongTaskGroup, error)
}

// DefectFilter defines criteria for the dynamic defect query. Exactly one
// owner field must be set; everything else is optional. String-typed dong
// and ho values that fail to parse as integers are dropped from the filter
// rather than failing the query.
type DefectFilter struct {
	// Owner scope (exactly one)
	ContractorID *uuid.UUID
	PartnerID    *uuid.UUID
	ResidentID   *uuid.UUID
	EngineerID   *uuid.UUID

	ComplexIDs []uuid.UUID
	Dongs      []string
	Hos        []string
	WorkType   *string

	// Buckets are role-specific bucket names, expanded to raw statuses
	// through the viewing role's projection table. Statuses filters on
	// raw statuses directly; when both are set their expansions are
	// combined.
	Role     Role
	Buckets  []string
	Statuses []DefectStatus

	RequestedFrom *time.Time
	RequestedTo   *time.Time

	// Page is 1-based. Page size is fixed at DefaultPageSize.
	Page int
}

// ParseNumericFilter parses string-typed dong/ho filter values. Values that
// do not parse as integers are dropped rather than failing the query, so a
// filter of only bad values degrades to no filter on that field.
func ParseNumericFilter(values []string) []int {
	var parsed []int
	for _, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		parsed = append(parsed, n)
	}
	return parsed
}

// DefectPage is one page of unit-grouped query results.
type DefectPage struct {
	Groups     []*UnitDefectGroup `json:"groups"`
	TotalPages int                `json:"totalPages"`
}

// UnitDefectGroup is one physical unit with its defects, newest first.
// Resident and Partner are nil when the join finds nothing; they are
// serialized as explicit JSON null, never as an empty object.
type UnitDefectGroup struct {
	Complex  *Complex  `json:"complex"`
	Unit     *Unit     `json:"unit"`
	Resident *User     `json:"resident"`
	Defects  []*Defect `json:"defects"`
}

// DailyDefectCount is one day's creation counts for the platform dashboard.
type DailyDefectCount struct {
	Date   time.Time            `json:"date"`
	Counts map[DefectStatus]int `json:"counts"`
	Total  int                  `json:"total"`
}

// EngineerComplexSummary is one complex an engineer has tasks in.
type EngineerComplexSummary struct {
	Complex        *Complex `json:"complex"`
	ScheduledCount int      `json:"scheduledCount"`
	RepairedCount  int      `json:"repairedCount"`
}

// DongTaskGroup groups an engineer's tasks in one building.
type DongTaskGroup struct {
	Dong string         `json:"dong"`
	Hos  []*HoTaskGroup `json:"hos"`
}

// HoTaskGroup groups an engineer's tasks in one unit, with bucket counts.
type HoTaskGroup struct {
	Ho             string    `json:"ho"`
	UnitID         uuid.UUID `json:"unitId"`
	ScheduledCount int       `json:"scheduledCount"`
	RepairedCount  int       `json:"repairedCount"`
	RejectedCount  int       `json:"rejectedCount"`
	Defects        []*Defect `json:"defects"`
}
