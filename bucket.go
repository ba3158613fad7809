package hajaro

import "fmt"

// Status bucket names. Not every bucket applies to every role; each role's
// projection table lists the ones it understands.
const (
	BucketPartnerNotAssigned = "PARTNER_NOT_ASSIGNED"
	BucketNotProcessed       = "NOT_PROCESSED"
	BucketInProgress         = "IN_PROGRESS"
	BucketRejected           = "REJECTED"
	BucketRepaired           = "REPAIRED"
	BucketConfirmed          = "CONFIRMED"
	BucketCancelAvailable    = "CANCEL_AVAILABLE"
	BucketRejectAvailable    = "REJECT_AVAILABLE"
	BucketEngineerAssigned   = "ENGINEER_ASSIGNED"
	BucketEngineerDone       = "ENGINEER_DONE"
)

// BucketTable maps a role's bucket names to the raw statuses they contain.
type BucketTable map[string][]DefectStatus

// ResidentBuckets classifies statuses for the resident app. A rejected
// defect reads as "not processed" to the resident; they can cancel
// anything in that same set.
var ResidentBuckets = BucketTable{
	BucketNotProcessed:    {DefectStatusPartnerNotAssigned, DefectStatusPartnerAssigned, DefectStatusRejected},
	BucketInProgress:      {DefectStatusScheduled},
	BucketRepaired:        {DefectStatusRepaired},
	BucketConfirmed:       {DefectStatusConfirmed},
	BucketCancelAvailable: {DefectStatusPartnerNotAssigned, DefectStatusPartnerAssigned, DefectStatusRejected},
}

// ContractorBuckets is near-raw: each status is its own bucket except
// PARTNER_ASSIGNED, which the contractor dashboard shows as not processed.
var ContractorBuckets = BucketTable{
	BucketPartnerNotAssigned: {DefectStatusPartnerNotAssigned},
	BucketNotProcessed:       {DefectStatusPartnerAssigned},
	BucketInProgress:         {DefectStatusScheduled},
	BucketRejected:           {DefectStatusRejected},
	BucketRepaired:           {DefectStatusRepaired},
	BucketConfirmed:          {DefectStatusConfirmed},
}

// PlatformBuckets matches the contractor view.
var PlatformBuckets = BucketTable{
	BucketPartnerNotAssigned: {DefectStatusPartnerNotAssigned},
	BucketNotProcessed:       {DefectStatusPartnerAssigned},
	BucketInProgress:         {DefectStatusScheduled},
	BucketRejected:           {DefectStatusRejected},
	BucketRepaired:           {DefectStatusRepaired},
	BucketConfirmed:          {DefectStatusConfirmed},
}

// PartnerAdminBuckets classifies statuses for the partner back office.
// REJECT_AVAILABLE doubles as the precondition set for the partner-admin
// reject transition.
var PartnerAdminBuckets = BucketTable{
	BucketNotProcessed:    {DefectStatusPartnerAssigned},
	BucketInProgress:      {DefectStatusScheduled},
	BucketRejected:        {DefectStatusRejected},
	BucketRepaired:        {DefectStatusRepaired},
	BucketConfirmed:       {DefectStatusConfirmed},
	BucketRejectAvailable: {DefectStatusPartnerAssigned, DefectStatusScheduled},
}

// EngineerBuckets classifies statuses for the engineer app.
var EngineerBuckets = BucketTable{
	BucketNotProcessed:     {DefectStatusScheduled},
	BucketRepaired:         {DefectStatusRepaired, DefectStatusConfirmed},
	BucketRejected:         {DefectStatusRejected},
	BucketRejectAvailable:  {DefectStatusScheduled},
	BucketEngineerAssigned: {DefectStatusScheduled, DefectStatusRepaired, DefectStatusConfirmed},
	BucketEngineerDone:     {DefectStatusRepaired, DefectStatusConfirmed},
}

// BucketsForRole returns the projection table for a role.
func BucketsForRole(role Role) (BucketTable, error) {
	switch role {
	case RoleResident:
		return ResidentBuckets, nil
	case RoleContractor:
		return ContractorBuckets, nil
	case RolePartnerAdmin:
		return PartnerAdminBuckets, nil
	case RoleEngineer:
		return EngineerBuckets, nil
	case RolePlatform:
		return PlatformBuckets, nil
	default:
		return nil, Invalid("unknown role %q", role)
	}
}

// StatusesForBuckets expands bucket names into the raw statuses they cover
// for the given role, deduplicated. An unknown bucket name for that role
// returns EINVALID.
func StatusesForBuckets(role Role, buckets []string) ([]DefectStatus, error) {
	table, err := BucketsForRole(role)
	if err != nil {
		return nil, err
	}
	seen := make(map[DefectStatus]bool)
	var statuses []DefectStatus
	for _, bucket := range buckets {
		raw, ok := table[bucket]
		if !ok {
			return nil, Invalid("unknown status bucket %q for role %q", bucket, role)
		}
		for _, s := range raw {
			if !seen[s] {
				seen[s] = true
				statuses = append(statuses, s)
			}
		}
	}
	return statuses, nil
}

// InBucket reports whether status falls in the named bucket for a role.
// Used both by query filtering and by transition preconditions so the two
// can never disagree.
func InBucket(role Role, bucket string, status DefectStatus) bool {
	table, err := BucketsForRole(role)
	if err != nil {
		return false
	}
	for _, s := range table[bucket] {
		if s == status {
			return true
		}
	}
	return false
}

// Resident-facing Korean status labels.
const (
	LabelNotProcessed = "미처리"
	LabelInProgress   = "처리중"
	LabelRepaired     = "수리완료"
	LabelConfirmed    = "서명 완료"
)

// ResidentStatusLabel converts a raw status to the Korean label shown to
// residents. CANCELED never reaches a resident notification.
func ResidentStatusLabel(status DefectStatus) string {
	switch status {
	case DefectStatusPartnerNotAssigned, DefectStatusPartnerAssigned, DefectStatusRejected:
		return LabelNotProcessed
	case DefectStatusScheduled:
		return LabelInProgress
	case DefectStatusRepaired:
		return LabelRepaired
	case DefectStatusConfirmed:
		return LabelConfirmed
	default:
		return ""
	}
}

// ResidentNotificationMessage renders the status-change message stored on a
// resident notification. Pure function of the defect's new state.
func ResidentNotificationMessage(d *Defect) string {
	return fmt.Sprintf("%s에 신청한\n<b>%s > %s > %s</b> 하자가 <b>%s</b> 상태로 변경되었습니다.",
		d.RequestedAt.Format("2006.01.02"),
		d.Location, d.Work.Type, d.Work.Detail,
		ResidentStatusLabel(d.Status))
}

// PushMessage is a push notification title/body pair.
type PushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Resident push messages per lifecycle event.
var (
	PushCreateDefect  = PushMessage{Title: "새로운 하자가 등록되었습니다.", Body: "새로운 하자가 등록되었습니다."}
	PushAssignDefect  = PushMessage{Title: "하자가 엽력사에 할당되었습니다.", Body: "하자가 엽력사에 할당되었습니다."}
	PushRepairDefect  = PushMessage{Title: "하자가 수리완료 되었습니다.", Body: "하자가 수리 완료되었습니다."}
	PushConfirmDefect = PushMessage{Title: "하자 수리 서명이 완료되었습니다.", Body: "하자 수리 서명이 완료되었습니다."}
)
