package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"campaign-access-service/internal/model"
)

func TestProjectionVisible(t *testing.T) {
	t.Run("admin sees the projection's full column set", func(t *testing.T) {
		profile := model.DefaultProfile(model.RoleAdmin)
		assert.Equal(t, ManagementProjection.Columns(), ManagementProjection.Visible(profile))
	})

	t.Run("standard user sees the intersection with allowed columns", func(t *testing.T) {
		profile := profileWith(model.RoleStandardUser,
			model.ColumnCampaign, model.ColumnSpend, model.ColumnDepartment)

		// department is not part of the management projection
		assert.Equal(t, []model.ColumnKey{
			model.ColumnCampaign,
			model.ColumnSpend,
		}, ManagementProjection.Visible(profile))

		assert.Equal(t, []model.ColumnKey{
			model.ColumnCampaign,
			model.ColumnSpend,
			model.ColumnDepartment,
		}, ReportProjection.Visible(profile))
	})

	t.Run("all columns denied yields an empty view", func(t *testing.T) {
		profile := model.DefaultProfile(model.RoleStandardUser)
		assert.Empty(t, TimelineProjection.Visible(profile))
	})
}

func TestProjectionColumnsIsACopy(t *testing.T) {
	cols := ManagementProjection.Columns()
	cols[0] = model.ColumnAgency
	assert.Equal(t, model.ColumnCampaign, ManagementProjection.Columns()[0])
}
