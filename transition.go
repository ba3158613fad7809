package hajaro

// Role identifies the actor class attempting an operation.
type Role string

const (
	RoleResident     Role = "resident"
	RoleContractor   Role = "contractor"
	RolePartnerAdmin Role = "partner_admin"
	RoleEngineer     Role = "engineer"
	RolePlatform     Role = "platform"
)

// Transition is one legal (actor, from-set, to) entry in the lifecycle table.
type Transition struct {
	Actor Role
	From  []DefectStatus
	To    DefectStatus
}

// transitionTable is the single source of truth for legal status changes.
// Ownership checks and side effects (timestamps, engineer clearing,
// rejection reason) live with the operation that performs the transition;
// this table answers only "may this actor move a defect from A to B".
var transitionTable = []Transition{
	// Contractor assigns (or reassigns) a partner through a duty.
	{
		Actor: RoleContractor,
		From:  []DefectStatus{DefectStatusPartnerNotAssigned, DefectStatusPartnerAssigned},
		To:    DefectStatusPartnerAssigned,
	},
	// Partner admin schedules an engineer.
	{
		Actor: RolePartnerAdmin,
		From:  []DefectStatus{DefectStatusPartnerAssigned},
		To:    DefectStatusScheduled,
	},
	// Partner admin declines the assignment; the engineer is cleared.
	{
		Actor: RolePartnerAdmin,
		From:  []DefectStatus{DefectStatusPartnerAssigned, DefectStatusScheduled},
		To:    DefectStatusRejected,
	},
	// Engineer completes the repair.
	{
		Actor: RoleEngineer,
		From:  []DefectStatus{DefectStatusScheduled},
		To:    DefectStatusRepaired,
	},
	// Engineer rejects their own task; the assignment is retained.
	{
		Actor: RoleEngineer,
		From:  []DefectStatus{DefectStatusScheduled},
		To:    DefectStatusRejected,
	},
	// Resident signs off on the repair.
	{
		Actor: RoleResident,
		From:  []DefectStatus{DefectStatusRepaired},
		To:    DefectStatusConfirmed,
	},
	// Resident withdraws the report.
	{
		Actor: RoleResident,
		From:  []DefectStatus{DefectStatusPartnerNotAssigned, DefectStatusPartnerAssigned, DefectStatusRejected},
		To:    DefectStatusCanceled,
	},
}

// CanTransition reports whether actor may move a defect from one status to
// another. Terminal statuses have no outgoing entries, so they always
// return false.
func CanTransition(actor Role, from, to DefectStatus) bool {
	for _, t := range transitionTable {
		if t.Actor != actor || t.To != to {
			continue
		}
		for _, f := range t.From {
			if f == from {
				return true
			}
		}
	}
	return false
}

// TransitionSources returns the statuses from which actor may reach target.
// Used to build the conditional-update predicate for a transition.
func TransitionSources(actor Role, target DefectStatus) []DefectStatus {
	var from []DefectStatus
	for _, t := range transitionTable {
		if t.Actor == actor && t.To == target {
			from = append(from, t.From...)
		}
	}
	return from
}
