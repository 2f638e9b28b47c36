package model

import (
	"errors"
	"fmt"
)

// ErrInvalidProfile is the root of every profile validation failure. Callers
// must treat it as fatal to the request and fall back to no access.
var ErrInvalidProfile = errors.New("invalid access profile")

// ColumnPermissionMap is a total mapping from every ColumnKey to an
// allow/deny flag. A map missing a key is a validation error, not a
// default-false lookup: a silently absent key is indistinguishable from a
// forgotten check.
type ColumnPermissionMap map[ColumnKey]bool

// DataScope restricts row visibility by department and agency. An empty set
// means unrestricted for that dimension; a non-empty set is an allow-list.
type DataScope struct {
	Departments map[string]struct{}
	Agencies    map[string]struct{}
}

// NewDataScope builds a scope from raw lists. Nil and empty both mean
// unrestricted.
func NewDataScope(departments, agencies []string) DataScope {
	return DataScope{
		Departments: toSet(departments),
		Agencies:    toSet(agencies),
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// UserAccessProfile is the validated, immutable access decision input for
// one authenticated session. It is re-derived when the underlying
// configuration changes between sessions.
type UserAccessProfile struct {
	Role              Role
	ColumnPermissions ColumnPermissionMap
	Scope             DataScope
}

// DefaultProfile returns the maximally restrictive profile for a role: every
// column denied, scope unrestricted. A newly provisioned user sees no data
// columns rather than an error; the empty scope intentionally means
// unrestricted rows even though nothing in them is readable.
func DefaultProfile(role Role) UserAccessProfile {
	perms := make(ColumnPermissionMap, len(allColumnKeys))
	for _, key := range allColumnKeys {
		perms[key] = false
	}
	return UserAccessProfile{
		Role:              role,
		ColumnPermissions: perms,
		Scope:             NewDataScope(nil, nil),
	}
}

// RawProfile is the untrusted actor descriptor handed over by the session
// collaborator, sourced from persisted per-user configuration. It must pass
// ValidateProfile before anything downstream trusts it.
type RawProfile struct {
	Role              string          `json:"role"`
	ColumnPermissions map[string]bool `json:"column_permissions"`
	Departments       []string        `json:"departments"`
	Agencies          []string        `json:"agencies"`
}

// ValidateProfile is the ingress gate for persisted configuration. The role
// must be one of the two enumerated values and the permission map must carry
// exactly the eight column keys. Missing keys, extra keys, and unknown roles
// all fail; nothing is coerced or defaulted.
func ValidateProfile(raw RawProfile) (UserAccessProfile, error) {
	role, err := ParseRole(raw.Role)
	if err != nil {
		return UserAccessProfile{}, err
	}

	if raw.ColumnPermissions == nil {
		return UserAccessProfile{}, fmt.Errorf("%w: column permissions missing", ErrInvalidProfile)
	}

	perms := make(ColumnPermissionMap, len(allColumnKeys))
	for _, key := range allColumnKeys {
		allowed, ok := raw.ColumnPermissions[string(key)]
		if !ok {
			return UserAccessProfile{}, fmt.Errorf("%w: missing column key %q", ErrInvalidProfile, key)
		}
		perms[key] = allowed
	}
	for rawKey := range raw.ColumnPermissions {
		if !IsKnownColumn(rawKey) {
			return UserAccessProfile{}, fmt.Errorf("%w: unknown column key %q", ErrInvalidProfile, rawKey)
		}
	}

	return UserAccessProfile{
		Role:              role,
		ColumnPermissions: perms,
		Scope:             NewDataScope(raw.Departments, raw.Agencies),
	}, nil
}
