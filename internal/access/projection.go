package access

import "campaign-access-service/internal/model"

// Projection is a read-only view selecting the fixed column subset one
// feature consumes. Features project the canonical permission map instead of
// carrying their own narrower permission shapes, so masking logic exists
// once.
type Projection struct {
	name    string
	columns []model.ColumnKey
}

var (
	// ManagementProjection backs the campaign management table.
	ManagementProjection = Projection{
		name: "management",
		columns: []model.ColumnKey{
			model.ColumnCampaign,
			model.ColumnCreative,
			model.ColumnChannel,
			model.ColumnSchedulePeriod,
			model.ColumnSpend,
			model.ColumnBudgetAccount,
		},
	}

	// ReportProjection backs the spend report and CSV export.
	ReportProjection = Projection{
		name: "report",
		columns: []model.ColumnKey{
			model.ColumnCampaign,
			model.ColumnChannel,
			model.ColumnSpend,
			model.ColumnBudgetAccount,
			model.ColumnDepartment,
			model.ColumnAgency,
		},
	}

	// TimelineProjection backs the schedule timeline.
	TimelineProjection = Projection{
		name: "timeline",
		columns: []model.ColumnKey{
			model.ColumnCampaign,
			model.ColumnCreative,
			model.ColumnSchedulePeriod,
			model.ColumnDepartment,
			model.ColumnAgency,
		},
	}
)

func (p Projection) Name() string { return p.name }

// Columns returns the fixed subset this feature consumes.
func (p Projection) Columns() []model.ColumnKey {
	out := make([]model.ColumnKey, len(p.columns))
	copy(out, p.columns)
	return out
}

// Visible returns the projection's columns the profile may read.
func (p Projection) Visible(profile model.UserAccessProfile) []model.ColumnKey {
	visible := make([]model.ColumnKey, 0, len(p.columns))
	for _, key := range p.columns {
		if HasColumnAccess(profile, key) {
			visible = append(visible, key)
		}
	}
	return visible
}
