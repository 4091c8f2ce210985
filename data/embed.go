// Package data embeds the database bootstrap scripts used by tests and container setup.
package data

import (
	_ "embed"
)

// InitdbMariaDBTables creates the recipedb schema. ${DB_APP_DATABASE} must be expanded before use.
//
//go:embed initdb/mariadb/002-ddl-tables.sql
var InitdbMariaDBTables string

// InitdbMariaDBPrivileges grants the application user DML access.
//
//go:embed initdb/mariadb/003-ddl-privileges.sql
var InitdbMariaDBPrivileges string
