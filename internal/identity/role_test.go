package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   interface{}
		want Role
	}{
		{"owner", RoleOwner},
		{" Manager ", RoleManager},
		{"KITCHEN", RoleKitchen},
		{"security", RoleSecurity},
		{"admin", RoleNone},
		{"", RoleNone},
		{nil, RoleNone},
		{42, RoleNone},
		{[]string{"owner"}, RoleNone},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseRole(tc.in), "input %v", tc.in)
	}
}

func TestRoleClasses(t *testing.T) {
	for _, r := range []Role{RoleCashier, RoleKitchen, RoleMaintenance, RoleDriver, RoleSecurity} {
		assert.True(t, r.IsRestricted(), r.String())
		assert.True(t, r.IsStaff(), r.String())
	}
	assert.False(t, RoleManager.IsRestricted())
	assert.True(t, RoleManager.IsStaff())
	assert.False(t, RoleOwner.IsStaff())
	assert.False(t, RoleNone.IsStaff())
	assert.Equal(t, "none", RoleNone.String())
}

func TestIsSystemOwner(t *testing.T) {
	assert.True(t, IsSystemOwner("Ops@IslaPOS.com", "ops@islapos.com"))
	assert.True(t, IsSystemOwner(" ops@islapos.com", "ops@islapos.com "))
	assert.False(t, IsSystemOwner("ops@islapos.co", "ops@islapos.com"))
	assert.False(t, IsSystemOwner("", ""))
	assert.False(t, IsSystemOwner("ops@islapos.com", ""))
}
