package access

import "campaign-access-service/internal/model"

// MaskedValue replaces denied textual fields before a record leaves the
// trust boundary. Numeric and date fields become nil instead.
const MaskedValue = "***"

// MaskCampaign redacts every denied column on the view. Identity for Admin.
// All eight keys are handled uniformly regardless of which feature view is
// calling, so a column denied in one place cannot stay visible through
// another view that forgot about it. Total and idempotent: masking an
// already-masked view changes nothing.
func MaskCampaign(view model.CampaignView, profile model.UserAccessProfile) model.CampaignView {
	if profile.Role.IsAdmin() {
		return view
	}
	if !HasColumnAccess(profile, model.ColumnCampaign) {
		view.Name = MaskedValue
	}
	if !HasColumnAccess(profile, model.ColumnCreative) {
		view.Creative = MaskedValue
	}
	if !HasColumnAccess(profile, model.ColumnChannel) {
		view.Channel = MaskedValue
	}
	if !HasColumnAccess(profile, model.ColumnSchedulePeriod) {
		view.StartDate = nil
		view.EndDate = nil
	}
	if !HasColumnAccess(profile, model.ColumnSpend) {
		view.Spend = nil
	}
	if !HasColumnAccess(profile, model.ColumnBudgetAccount) {
		view.BudgetAccount = MaskedValue
	}
	if !HasColumnAccess(profile, model.ColumnDepartment) {
		view.Department = MaskedValue
	}
	if !HasColumnAccess(profile, model.ColumnAgency) {
		view.Agency = MaskedValue
	}
	return view
}

// MaskCampaigns converts and masks a slice of raw rows in one pass.
func MaskCampaigns(rows []model.Campaign, profile model.UserAccessProfile) []model.CampaignView {
	views := make([]model.CampaignView, 0, len(rows))
	for _, row := range rows {
		views = append(views, MaskCampaign(row.View(), profile))
	}
	return views
}
