package access

import "campaign-access-service/internal/model"

// IsRowVisible decides per-row visibility. Admin sees everything. For a
// standard user both dimensions must pass: an empty set is unrestricted, a
// non-empty set is an allow-list. Both dimensions must pass: department-only
// or agency-only scoping is a common configuration and must not leak rows
// that fail the other dimension.
func IsRowVisible(profile model.UserAccessProfile, entity model.ScopedEntity) bool {
	if profile.Role.IsAdmin() {
		return true
	}
	if len(profile.Scope.Departments) > 0 {
		if _, ok := profile.Scope.Departments[entity.ScopeDepartment()]; !ok {
			return false
		}
	}
	if len(profile.Scope.Agencies) > 0 {
		if _, ok := profile.Scope.Agencies[entity.ScopeAgency()]; !ok {
			return false
		}
	}
	return true
}

// FilterRowsByScope retains the rows visible to the profile, preserving
// input order. Admin and fully unrestricted scopes return the input slice
// unchanged. Pure: the input is never mutated.
func FilterRowsByScope[T model.ScopedEntity](rows []T, profile model.UserAccessProfile) []T {
	if profile.Role.IsAdmin() {
		return rows
	}
	if len(profile.Scope.Departments) == 0 && len(profile.Scope.Agencies) == 0 {
		return rows
	}
	filtered := make([]T, 0, len(rows))
	for _, row := range rows {
		if IsRowVisible(profile, row) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}
