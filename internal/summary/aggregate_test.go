package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign-access-service/internal/model"
)

var refDate = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

func marchCampaign(id, creative, agency string, spend int64) model.Campaign {
	return model.Campaign{
		ID:        id,
		Creative:  creative,
		Agency:    agency,
		Spend:     spend,
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

func adminProfile() model.UserAccessProfile {
	return model.DefaultProfile(model.RoleAdmin)
}

func spendProfile() model.UserAccessProfile {
	profile := model.DefaultProfile(model.RoleStandardUser)
	profile.ColumnPermissions[model.ColumnSpend] = true
	return profile
}

func TestBuildGatesSpendOnColumnAccess(t *testing.T) {
	rows := []model.Campaign{
		marchCampaign("c1", "video", "agency-1", 500_000),
		marchCampaign("c2", "banner", "agency-2", 300_000),
	}

	// All columns denied: counts still come through, spend does not.
	summary := Build(rows, model.DefaultProfile(model.RoleStandardUser), refDate)

	assert.Equal(t, 2, summary.ActiveCampaigns)
	assert.Nil(t, summary.PeriodSpend)
	assert.Nil(t, summary.YearlySpend)
	assert.NotNil(t, summary.SpendByCreative)
	assert.Empty(t, summary.SpendByCreative)
	assert.NotNil(t, summary.SpendByAgency)
	assert.Empty(t, summary.SpendByAgency)
}

func TestBuildComputesSpendForAdmin(t *testing.T) {
	rows := []model.Campaign{
		marchCampaign("c1", "video", "agency-1", 1_200_000),
		marchCampaign("c2", "banner", "agency-2", 800_000),
		marchCampaign("c3", "video", "agency-3", 450_000),
		marchCampaign("c4", "search", "agency-4", 1_500_000),
		marchCampaign("c5", "banner", "agency-5", 600_000),
	}

	summary := Build(rows, adminProfile(), refDate)

	assert.Equal(t, 5, summary.ActiveCampaigns)
	require.NotNil(t, summary.PeriodSpend)
	assert.Equal(t, int64(4_550_000), *summary.PeriodSpend)
	require.NotNil(t, summary.YearlySpend)
	assert.Equal(t, int64(4_550_000), *summary.YearlySpend)

	require.Len(t, summary.SpendByCreative, 3)
	assert.Equal(t, GroupSpend{Label: "video", Spend: 1_650_000}, summary.SpendByCreative[0])
	assert.Equal(t, GroupSpend{Label: "search", Spend: 1_500_000}, summary.SpendByCreative[1])
	assert.Equal(t, GroupSpend{Label: "banner", Spend: 1_400_000}, summary.SpendByCreative[2])

	require.Len(t, summary.SpendByAgency, 5)
	assert.Equal(t, "agency-4", summary.SpendByAgency[0].Label)
}

func TestBuildGatesDistributionsOnGroupingColumns(t *testing.T) {
	rows := []model.Campaign{
		marchCampaign("c1", "secret-creative", "agency-1", 100),
		marchCampaign("c2", "secret-creative", "agency-2", 200),
	}

	t.Run("denied creative column never appears as a label", func(t *testing.T) {
		profile := spendProfile()
		profile.ColumnPermissions[model.ColumnAgency] = true

		summary := Build(rows, profile, refDate)

		// Spend totals are allowed, but the creative labels are not.
		require.NotNil(t, summary.PeriodSpend)
		assert.Equal(t, int64(300), *summary.PeriodSpend)
		assert.NotNil(t, summary.SpendByCreative)
		assert.Empty(t, summary.SpendByCreative)
		require.Len(t, summary.SpendByAgency, 2)
	})

	t.Run("denied agency column never appears as a label", func(t *testing.T) {
		profile := spendProfile()
		profile.ColumnPermissions[model.ColumnCreative] = true

		summary := Build(rows, profile, refDate)

		require.Len(t, summary.SpendByCreative, 1)
		assert.Equal(t, "secret-creative", summary.SpendByCreative[0].Label)
		assert.NotNil(t, summary.SpendByAgency)
		assert.Empty(t, summary.SpendByAgency)
	})

	t.Run("spend alone yields totals but no distributions", func(t *testing.T) {
		summary := Build(rows, spendProfile(), refDate)

		require.NotNil(t, summary.PeriodSpend)
		assert.Empty(t, summary.SpendByCreative)
		assert.Empty(t, summary.SpendByAgency)
	})
}

func TestBuildZeroSpendStaysDistinguishableFromDenied(t *testing.T) {
	rows := []model.Campaign{marchCampaign("c1", "video", "agency-1", 0)}

	summary := Build(rows, spendProfile(), refDate)

	require.NotNil(t, summary.PeriodSpend)
	assert.Equal(t, int64(0), *summary.PeriodSpend)
}

func TestBuildAppliesRowScopeBeforeAggregation(t *testing.T) {
	rows := []model.Campaign{
		marchCampaign("c1", "video", "agency-1", 500_000),
		marchCampaign("c2", "video", "agency-2", 300_000),
	}
	rows[0].Department = "dept-a"
	rows[1].Department = "dept-b"

	profile := spendProfile()
	profile.Scope = model.NewDataScope([]string{"dept-a"}, nil)

	summary := Build(rows, profile, refDate)

	assert.Equal(t, 1, summary.ActiveCampaigns)
	require.NotNil(t, summary.PeriodSpend)
	assert.Equal(t, int64(500_000), *summary.PeriodSpend)
}

func TestBuildWindowOverlap(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		inPeriod bool
		inYear   bool
	}{
		{
			name:     "fully inside the month",
			start:    time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
			inPeriod: true,
			inYear:   true,
		},
		{
			name:     "ends on the first day of the month",
			start:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			inPeriod: true,
			inYear:   true,
		},
		{
			name:     "starts on the last day of the month",
			start:    time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
			inPeriod: true,
			inYear:   true,
		},
		{
			name:     "starts at the last instant of the month",
			start:    time.Date(2026, 3, 31, 23, 59, 59, 999_999_999, time.UTC),
			end:      time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
			inPeriod: true,
			inYear:   true,
		},
		{
			name:     "starts at midnight of the next month",
			start:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
			inPeriod: false,
			inYear:   true,
		},
		{
			name:     "spans the whole month from outside",
			start:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
			inPeriod: true,
			inYear:   true,
		},
		{
			name:     "ended the month before",
			start:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
			inPeriod: false,
			inYear:   true,
		},
		{
			name:     "previous year only",
			start:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
			inPeriod: false,
			inYear:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []model.Campaign{{
				ID:        "c1",
				Creative:  "video",
				Agency:    "agency-1",
				Spend:     100,
				StartDate: tt.start,
				EndDate:   tt.end,
			}}

			summary := Build(rows, adminProfile(), refDate)

			wantActive := 0
			if tt.inPeriod {
				wantActive = 1
			}
			assert.Equal(t, wantActive, summary.ActiveCampaigns)

			require.NotNil(t, summary.YearlySpend)
			if tt.inYear {
				assert.Equal(t, int64(100), *summary.YearlySpend)
			} else {
				assert.Equal(t, int64(0), *summary.YearlySpend)
			}
		})
	}
}

func TestDistributionTieBreak(t *testing.T) {
	rows := []model.Campaign{
		marchCampaign("c1", "zeta", "agency-1", 500),
		marchCampaign("c2", "alpha", "agency-2", 500),
		marchCampaign("c3", "mid", "agency-3", 700),
	}

	summary := Build(rows, adminProfile(), refDate)

	require.Len(t, summary.SpendByCreative, 3)
	assert.Equal(t, "mid", summary.SpendByCreative[0].Label)
	// Equal spend sorts by label ascending.
	assert.Equal(t, "alpha", summary.SpendByCreative[1].Label)
	assert.Equal(t, "zeta", summary.SpendByCreative[2].Label)
}

func TestBuildEmptyInput(t *testing.T) {
	summary := Build(nil, adminProfile(), refDate)

	assert.Equal(t, 0, summary.ActiveCampaigns)
	require.NotNil(t, summary.PeriodSpend)
	assert.Equal(t, int64(0), *summary.PeriodSpend)
	assert.Empty(t, summary.SpendByCreative)
}
