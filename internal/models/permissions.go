package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Capability is a permission tag a user can hold.
type Capability string

const (
	CapabilityPlatformIndex Capability = "platform.index"
	CapabilitySystems       Capability = "platform.systems"
	CapabilitySystemsIndex  Capability = "platform.systems.index"
	CapabilitySystemsUsers  Capability = "platform.systems.users"
	CapabilitySystemsRoles  Capability = "platform.systems.roles"
)

// Capabilities lists every capability the service recognizes
var Capabilities = []Capability{
	CapabilityPlatformIndex,
	CapabilitySystems,
	CapabilitySystemsIndex,
	CapabilitySystemsUsers,
	CapabilitySystemsRoles,
}

// Valid reports whether c is a known capability
func (c Capability) Valid() bool {
	for _, known := range Capabilities {
		if c == known {
			return true
		}
	}
	return false
}

// Permissions maps capabilities to their enabled flag.
// Stored as a JSON object; unknown keys are dropped on load.
type Permissions map[Capability]bool

// AdminPermissions is the capability set granted by make-admin
func AdminPermissions() Permissions {
	return Permissions{
		CapabilitySystems:      true,
		CapabilitySystemsIndex: true,
		CapabilitySystemsUsers: true,
		CapabilitySystemsRoles: true,
	}
}

// Has reports whether the capability is enabled
func (p Permissions) Has(c Capability) bool {
	return p[c]
}

// IsAdmin reports whether the set grants system administration
func (p Permissions) IsAdmin() bool {
	return p.Has(CapabilitySystems) || p.Has(CapabilitySystemsIndex)
}

// Merge returns a copy of p with other applied on top
func (p Permissions) Merge(other Permissions) Permissions {
	out := make(Permissions, len(p)+len(other))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Value implements driver.Valuer
func (p Permissions) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner, going through datatypes.JSON for driver quirks
func (p *Permissions) Scan(value interface{}) error {
	if value == nil {
		*p = Permissions{}
		return nil
	}

	var raw datatypes.JSON
	if err := raw.Scan(value); err != nil {
		return fmt.Errorf("permissions: %w", err)
	}

	decoded := map[string]bool{}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return fmt.Errorf("permissions: %w", err)
		}
	}

	out := make(Permissions, len(decoded))
	for k, v := range decoded {
		if c := Capability(k); c.Valid() {
			out[c] = v
		}
	}
	*p = out
	return nil
}

// GormDBDataType ensures the correct data type is used for each database driver.
// MSSQL does not support the 'json' data type.
func (Permissions) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
