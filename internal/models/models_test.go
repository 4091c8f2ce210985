package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwner(t *testing.T) {
	system := OwnerOf(nil)
	assert.True(t, system.IsSystem())
	assert.Nil(t, system.Column())
	assert.Equal(t, "system", system.String())

	zero := uint64(0)
	assert.True(t, OwnerOf(&zero).IsSystem())

	id := uint64(7)
	owner := OwnerOf(&id)
	assert.False(t, owner.IsSystem())
	got, ok := owner.UserID()
	assert.True(t, ok)
	assert.EqualValues(t, 7, got)
	assert.Equal(t, &id, owner.Column())
	assert.Equal(t, "user(7)", owner.String())
}

func TestPermissionsScan(t *testing.T) {
	var p Permissions
	require.NoError(t, p.Scan([]byte(`{"platform.systems":true,"unknown.cap":true,"platform.index":false}`)))
	assert.True(t, p.Has(CapabilitySystems))
	assert.False(t, p.Has(CapabilityPlatformIndex))
	assert.NotContains(t, p, Capability("unknown.cap"))
	assert.True(t, p.IsAdmin())

	require.NoError(t, p.Scan(`{}`))
	assert.False(t, p.IsAdmin())

	require.NoError(t, p.Scan(nil))
	assert.Empty(t, p)

	assert.Error(t, p.Scan([]byte(`[1,2]`)))
}

func TestPermissionsValueAndMerge(t *testing.T) {
	var none Permissions
	v, err := none.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)

	merged := Permissions{CapabilityPlatformIndex: true}.Merge(AdminPermissions())
	assert.True(t, merged.Has(CapabilityPlatformIndex))
	assert.True(t, merged.IsAdmin())

	v, err = Permissions{CapabilitySystemsIndex: true}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"platform.systems.index":true}`, v.(string))
}

func TestUserIsAdmin(t *testing.T) {
	var nobody *User
	assert.False(t, nobody.IsAdmin())
	assert.False(t, (&User{}).IsAdmin())
	assert.True(t, (&User{Permissions: AdminPermissions()}).IsAdmin())
}

func TestAttachmentKey(t *testing.T) {
	a := Attachment{Path: "2026/10/16/", Name: "abc", Extension: "png"}
	assert.Equal(t, "2026/10/16/abc.png", a.Key())

	a.Extension = ""
	assert.Equal(t, "2026/10/16/abc", a.Key())
}
