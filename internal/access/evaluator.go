// Package access holds the column and row visibility decisions. The Admin
// bypass lives here and only here; no other component re-implements it.
package access

import "campaign-access-service/internal/model"

// HasColumnAccess decides per-column visibility. Total over the closed
// enumeration: a validated profile carries a flag for every key, and Admin
// short-circuits to visible.
func HasColumnAccess(profile model.UserAccessProfile, column model.ColumnKey) bool {
	if profile.Role.IsAdmin() {
		return true
	}
	return profile.ColumnPermissions[column]
}

// VisibleColumns returns the columns the profile may read, in canonical
// order. Admin gets the full enumeration.
func VisibleColumns(profile model.UserAccessProfile) []model.ColumnKey {
	if profile.Role.IsAdmin() {
		return model.AllColumnKeys()
	}
	visible := make([]model.ColumnKey, 0, 8)
	for _, key := range model.AllColumnKeys() {
		if profile.ColumnPermissions[key] {
			visible = append(visible, key)
		}
	}
	return visible
}
