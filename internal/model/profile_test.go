package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullPermissions(allowed bool) map[string]bool {
	perms := make(map[string]bool, len(allColumnKeys))
	for _, key := range allColumnKeys {
		perms[string(key)] = allowed
	}
	return perms
}

func TestValidateProfile(t *testing.T) {
	t.Run("accepts a complete configuration", func(t *testing.T) {
		raw := RawProfile{
			Role:              "user",
			ColumnPermissions: fullPermissions(true),
			Departments:       []string{"dept-a"},
			Agencies:          []string{"agency-x"},
		}

		profile, err := ValidateProfile(raw)
		require.NoError(t, err)
		assert.Equal(t, RoleStandardUser, profile.Role)
		assert.Len(t, profile.ColumnPermissions, len(allColumnKeys))
		assert.Contains(t, profile.Scope.Departments, "dept-a")
		assert.Contains(t, profile.Scope.Agencies, "agency-x")
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		raw := RawProfile{Role: "superuser", ColumnPermissions: fullPermissions(true)}

		_, err := ValidateProfile(raw)
		require.ErrorIs(t, err, ErrInvalidProfile)
	})

	t.Run("rejects nil permission map", func(t *testing.T) {
		raw := RawProfile{Role: "admin"}

		_, err := ValidateProfile(raw)
		require.ErrorIs(t, err, ErrInvalidProfile)
	})

	t.Run("rejects missing column key", func(t *testing.T) {
		perms := fullPermissions(true)
		delete(perms, string(ColumnSpend))
		raw := RawProfile{Role: "user", ColumnPermissions: perms}

		_, err := ValidateProfile(raw)
		require.ErrorIs(t, err, ErrInvalidProfile)
		assert.Contains(t, err.Error(), "spend")
	})

	t.Run("rejects unknown extra key", func(t *testing.T) {
		perms := fullPermissions(true)
		perms["velocity"] = true
		raw := RawProfile{Role: "user", ColumnPermissions: perms}

		_, err := ValidateProfile(raw)
		require.ErrorIs(t, err, ErrInvalidProfile)
		assert.Contains(t, err.Error(), "velocity")
	})

	t.Run("does not coerce a false flag to absent", func(t *testing.T) {
		perms := fullPermissions(false)
		raw := RawProfile{Role: "user", ColumnPermissions: perms}

		profile, err := ValidateProfile(raw)
		require.NoError(t, err)
		for _, key := range allColumnKeys {
			allowed, ok := profile.ColumnPermissions[key]
			assert.True(t, ok)
			assert.False(t, allowed)
		}
	})
}

func TestDefaultProfile(t *testing.T) {
	profile := DefaultProfile(RoleStandardUser)

	assert.Equal(t, RoleStandardUser, profile.Role)
	assert.Len(t, profile.ColumnPermissions, len(allColumnKeys))
	for key, allowed := range profile.ColumnPermissions {
		assert.False(t, allowed, "column %s should be denied by default", key)
	}
	assert.Empty(t, profile.Scope.Departments)
	assert.Empty(t, profile.Scope.Agencies)
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{input: "admin", want: RoleAdmin},
		{input: "user", want: RoleStandardUser},
		{input: "", wantErr: true},
		{input: "Admin", wantErr: true},
		{input: "root", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("input "+tt.input, func(t *testing.T) {
			role, err := ParseRole(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidProfile)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}
}

func TestNewDataScope(t *testing.T) {
	t.Run("nil lists mean unrestricted", func(t *testing.T) {
		scope := NewDataScope(nil, nil)
		assert.Empty(t, scope.Departments)
		assert.Empty(t, scope.Agencies)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		scope := NewDataScope([]string{"a", "a", "b"}, nil)
		assert.Len(t, scope.Departments, 2)
	})
}
