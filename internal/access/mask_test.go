package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign-access-service/internal/model"
)

func sampleCampaign() model.Campaign {
	return model.Campaign{
		ID:            "c1",
		Name:          "Spring Launch",
		Creative:      "video-30s",
		Channel:       "social",
		StartDate:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Spend:         1_200_000,
		BudgetAccount: "ACCT-01",
		Department:    "dept-a",
		Agency:        "agency-x",
	}
}

func TestMaskCampaign(t *testing.T) {
	t.Run("admin view is untouched", func(t *testing.T) {
		view := sampleCampaign().View()
		masked := MaskCampaign(view, model.DefaultProfile(model.RoleAdmin))
		assert.Equal(t, view, masked)
	})

	t.Run("denied text fields become the sentinel", func(t *testing.T) {
		profile := profileWith(model.RoleStandardUser, model.ColumnSpend, model.ColumnSchedulePeriod)

		masked := MaskCampaign(sampleCampaign().View(), profile)

		assert.Equal(t, MaskedValue, masked.Name)
		assert.Equal(t, MaskedValue, masked.Creative)
		assert.Equal(t, MaskedValue, masked.Channel)
		assert.Equal(t, MaskedValue, masked.BudgetAccount)
		assert.Equal(t, MaskedValue, masked.Department)
		assert.Equal(t, MaskedValue, masked.Agency)
	})

	t.Run("denied numeric and date fields become nil", func(t *testing.T) {
		profile := profileWith(model.RoleStandardUser, model.ColumnCampaign)

		masked := MaskCampaign(sampleCampaign().View(), profile)

		assert.Nil(t, masked.Spend)
		assert.Nil(t, masked.StartDate)
		assert.Nil(t, masked.EndDate)
		assert.Equal(t, "Spring Launch", masked.Name)
	})

	t.Run("allowed fields survive untouched", func(t *testing.T) {
		profile := profileWith(model.RoleStandardUser,
			model.ColumnSpend, model.ColumnSchedulePeriod, model.ColumnAgency)

		masked := MaskCampaign(sampleCampaign().View(), profile)

		require.NotNil(t, masked.Spend)
		assert.Equal(t, int64(1_200_000), *masked.Spend)
		require.NotNil(t, masked.StartDate)
		assert.Equal(t, "agency-x", masked.Agency)
	})

	t.Run("masking is idempotent", func(t *testing.T) {
		profile := profileWith(model.RoleStandardUser, model.ColumnChannel)

		once := MaskCampaign(sampleCampaign().View(), profile)
		twice := MaskCampaign(once, profile)
		assert.Equal(t, once, twice)
	})
}

func TestMaskCampaigns(t *testing.T) {
	rows := []model.Campaign{sampleCampaign(), sampleCampaign()}
	profile := model.DefaultProfile(model.RoleStandardUser)

	views := MaskCampaigns(rows, profile)
	require.Len(t, views, 2)
	for _, v := range views {
		assert.Equal(t, MaskedValue, v.Name)
		assert.Nil(t, v.Spend)
	}
}
