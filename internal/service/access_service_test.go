package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campaign-access-service/internal/access"
	"campaign-access-service/internal/model"
)

func newAccessFixture(rows []model.Campaign, profiles map[string]model.RawProfile) (*AccessService, *fakeProfileRepo) {
	repo := &fakeProfileRepo{profiles: profiles}
	return NewAccessService(repo, &fakeCampaignRepo{rows: rows}, nil, zap.NewNop()), repo
}

func TestResolveProfile(t *testing.T) {
	t.Run("validates persisted configuration", func(t *testing.T) {
		svc, _ := newAccessFixture(nil, map[string]model.RawProfile{
			"acct-1": {
				Role:              "admin",
				ColumnPermissions: fullRawPermissions(false),
			},
		})

		profile, err := svc.ResolveProfile(context.Background(), "acct-1", "admin")
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, profile.Role)
	})

	t.Run("missing configuration falls back to default-deny", func(t *testing.T) {
		svc, _ := newAccessFixture(nil, nil)

		profile, err := svc.ResolveProfile(context.Background(), "acct-1", "user")
		require.NoError(t, err)
		assert.Equal(t, model.RoleStandardUser, profile.Role)
		for _, key := range model.AllColumnKeys() {
			assert.False(t, profile.ColumnPermissions[key])
		}
	})

	t.Run("broken configuration fails closed", func(t *testing.T) {
		svc, _ := newAccessFixture(nil, map[string]model.RawProfile{
			"acct-1": {Role: "wizard", ColumnPermissions: fullRawPermissions(true)},
		})

		_, err := svc.ResolveProfile(context.Background(), "acct-1", "user")
		require.ErrorIs(t, err, model.ErrInvalidProfile)
	})
}

func TestSaveProfileConfigRejectsInvalid(t *testing.T) {
	svc, repo := newAccessFixture(nil, nil)

	err := svc.SaveProfileConfig(context.Background(), "acct-1", model.RawProfile{Role: "user"})
	require.ErrorIs(t, err, model.ErrInvalidProfile)
	assert.Empty(t, repo.saved)

	err = svc.SaveProfileConfig(context.Background(), "acct-1", model.RawProfile{
		Role:              "user",
		ColumnPermissions: fullRawPermissions(true),
	})
	require.NoError(t, err)
	assert.Contains(t, repo.saved, "acct-1")
}

func TestCampaignsFiltersAndMasks(t *testing.T) {
	rows := []model.Campaign{
		{ID: "c1", Name: "Visible", Department: "dept-a", Spend: 100},
		{ID: "c2", Name: "Hidden", Department: "dept-b", Spend: 200},
	}
	svc, _ := newAccessFixture(rows, nil)

	profile := model.DefaultProfile(model.RoleStandardUser)
	profile.ColumnPermissions[model.ColumnCampaign] = true
	profile.Scope = model.NewDataScope([]string{"dept-a"}, nil)

	views, err := svc.Campaigns(context.Background(), profile)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Visible", views[0].Name)
	assert.Nil(t, views[0].Spend)
	assert.Equal(t, access.MaskedValue, views[0].Department)
}

func TestSummaryUsesRepositoryRows(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	rows := []model.Campaign{
		{ID: "c1", Creative: "video", Agency: "a1", Spend: 100, StartDate: start, EndDate: end},
	}
	svc, _ := newAccessFixture(rows, nil)

	result, err := svc.Summary(context.Background(), model.DefaultProfile(model.RoleAdmin),
		time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, result.ActiveCampaigns)
	require.NotNil(t, result.PeriodSpend)
	assert.Equal(t, int64(100), *result.PeriodSpend)
}
