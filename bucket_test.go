package hajaro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every role's view buckets must cover the raw statuses they claim to and
// place each status in exactly one view bucket. Meta buckets
// (CANCEL_AVAILABLE, REJECT_AVAILABLE, ENGINEER_*) overlay the view buckets
// and are excluded from the exclusivity check.
func TestBucketTablesAreExclusiveOverViewBuckets(t *testing.T) {
	metaBuckets := map[string]bool{
		BucketCancelAvailable:  true,
		BucketRejectAvailable:  true,
		BucketEngineerAssigned: true,
		BucketEngineerDone:     true,
	}

	tests := []struct {
		role Role
		// statuses the role's view buckets are expected to cover
		covered []DefectStatus
	}{
		{RoleResident, []DefectStatus{
			DefectStatusPartnerNotAssigned, DefectStatusPartnerAssigned,
			DefectStatusScheduled, DefectStatusRejected,
			DefectStatusRepaired, DefectStatusConfirmed,
		}},
		{RoleContractor, []DefectStatus{
			DefectStatusPartnerNotAssigned, DefectStatusPartnerAssigned,
			DefectStatusScheduled, DefectStatusRejected,
			DefectStatusRepaired, DefectStatusConfirmed,
		}},
		{RolePlatform, []DefectStatus{
			DefectStatusPartnerNotAssigned, DefectStatusPartnerAssigned,
			DefectStatusScheduled, DefectStatusRejected,
			DefectStatusRepaired, DefectStatusConfirmed,
		}},
		{RolePartnerAdmin, []DefectStatus{
			DefectStatusPartnerAssigned, DefectStatusScheduled,
			DefectStatusRejected, DefectStatusRepaired, DefectStatusConfirmed,
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			table, err := BucketsForRole(tt.role)
			require.NoError(t, err)

			counts := make(map[DefectStatus]int)
			for bucket, statuses := range table {
				if metaBuckets[bucket] {
					continue
				}
				for _, s := range statuses {
					counts[s]++
				}
			}

			for _, s := range tt.covered {
				assert.Equal(t, 1, counts[s], "role %s status %s", tt.role, s)
			}
		})
	}
}

// The engineer view intentionally folds CONFIRMED into REPAIRED; check that
// table separately since REPAIRED/CONFIRMED overlap there.
func TestEngineerBuckets(t *testing.T) {
	assert.ElementsMatch(t, []DefectStatus{DefectStatusScheduled}, EngineerBuckets[BucketNotProcessed])
	assert.ElementsMatch(t, []DefectStatus{DefectStatusRepaired, DefectStatusConfirmed}, EngineerBuckets[BucketRepaired])
	assert.ElementsMatch(t, []DefectStatus{DefectStatusRejected}, EngineerBuckets[BucketRejected])
	assert.ElementsMatch(t,
		[]DefectStatus{DefectStatusScheduled, DefectStatusRepaired, DefectStatusConfirmed},
		EngineerBuckets[BucketEngineerAssigned])
	assert.ElementsMatch(t,
		[]DefectStatus{DefectStatusRepaired, DefectStatusConfirmed},
		EngineerBuckets[BucketEngineerDone])
}

func TestStatusesForBuckets(t *testing.T) {
	statuses, err := StatusesForBuckets(RoleResident, []string{BucketNotProcessed, BucketInProgress})
	require.NoError(t, err)
	assert.ElementsMatch(t, []DefectStatus{
		DefectStatusPartnerNotAssigned, DefectStatusPartnerAssigned,
		DefectStatusRejected, DefectStatusScheduled,
	}, statuses)

	// Overlapping buckets deduplicate.
	statuses, err = StatusesForBuckets(RoleResident, []string{BucketNotProcessed, BucketCancelAvailable})
	require.NoError(t, err)
	assert.Len(t, statuses, 3)

	_, err = StatusesForBuckets(RoleResident, []string{BucketRejectAvailable})
	require.Error(t, err)
	assert.Equal(t, EINVALID, ErrorCode(err))

	_, err = StatusesForBuckets(Role("janitor"), []string{BucketRepaired})
	require.Error(t, err)
	assert.Equal(t, EINVALID, ErrorCode(err))
}

func TestInBucket(t *testing.T) {
	assert.True(t, InBucket(RolePartnerAdmin, BucketRejectAvailable, DefectStatusScheduled))
	assert.True(t, InBucket(RolePartnerAdmin, BucketRejectAvailable, DefectStatusPartnerAssigned))
	assert.False(t, InBucket(RolePartnerAdmin, BucketRejectAvailable, DefectStatusRepaired))
	assert.True(t, InBucket(RoleResident, BucketCancelAvailable, DefectStatusRejected))
	assert.False(t, InBucket(RoleResident, BucketCancelAvailable, DefectStatusConfirmed))
}

func TestResidentStatusLabel(t *testing.T) {
	tests := []struct {
		status DefectStatus
		want   string
	}{
		{DefectStatusPartnerNotAssigned, "미처리"},
		{DefectStatusPartnerAssigned, "미처리"},
		{DefectStatusRejected, "미처리"},
		{DefectStatusScheduled, "처리중"},
		{DefectStatusRepaired, "수리완료"},
		{DefectStatusConfirmed, "서명 완료"},
		{DefectStatusCanceled, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResidentStatusLabel(tt.status), string(tt.status))
	}
}

func TestResidentNotificationMessage(t *testing.T) {
	d := &Defect{
		Location:    "안방",
		Work:        Work{Type: "도배", Detail: "찢김"},
		Status:      DefectStatusRepaired,
		RequestedAt: time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC),
	}

	msg := ResidentNotificationMessage(d)
	assert.Equal(t, "2024.03.05에 신청한\n<b>안방 > 도배 > 찢김</b> 하자가 <b>수리완료</b> 상태로 변경되었습니다.", msg)
}

func TestParseNumericFilter(t *testing.T) {
	assert.Equal(t, []int{101, 204}, ParseNumericFilter([]string{"101", "204"}))
	assert.Equal(t, []int{101}, ParseNumericFilter([]string{"101", "지하"}))
	assert.Nil(t, ParseNumericFilter([]string{"전체", "abc"}))
	assert.Nil(t, ParseNumericFilter(nil))
}
