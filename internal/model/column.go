package model

// ColumnKey is the closed set of business-data columns subject to per-user
// read permission. The same eight keys back every feature view (dashboard
// summary, management table, report, timeline); individual views consume
// subsets but the permission map is always total over this set.
type ColumnKey string

const (
	ColumnCampaign       ColumnKey = "campaign"
	ColumnCreative       ColumnKey = "creative"
	ColumnChannel        ColumnKey = "channel"
	ColumnSchedulePeriod ColumnKey = "schedule_period"
	ColumnSpend          ColumnKey = "spend"
	ColumnBudgetAccount  ColumnKey = "budget_account"
	ColumnDepartment     ColumnKey = "department"
	ColumnAgency         ColumnKey = "agency"
)

// allColumnKeys is the canonical ordering used for validation and projection.
var allColumnKeys = []ColumnKey{
	ColumnCampaign,
	ColumnCreative,
	ColumnChannel,
	ColumnSchedulePeriod,
	ColumnSpend,
	ColumnBudgetAccount,
	ColumnDepartment,
	ColumnAgency,
}

// AllColumnKeys returns a copy of the full enumeration.
func AllColumnKeys() []ColumnKey {
	out := make([]ColumnKey, len(allColumnKeys))
	copy(out, allColumnKeys)
	return out
}

// IsKnownColumn reports whether raw names one of the eight keys.
func IsKnownColumn(raw string) bool {
	for _, k := range allColumnKeys {
		if string(k) == raw {
			return true
		}
	}
	return false
}
