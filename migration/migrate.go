// Package migration owns schema evolution. Migrations self-register by name
// in file init() funcs and run in registration order.
package migration

import (
	"fmt"

	"gorm.io/gorm"
)

// MigrationFunc applies one schema change.
type MigrationFunc func(db *gorm.DB) error

type migrationEntry struct {
	name string
	fn   MigrationFunc
}

var registry []migrationEntry

// Register adds a migration to the run list. Duplicate names are rejected.
func Register(name string, fn MigrationFunc) error {
	for _, entry := range registry {
		if entry.name == name {
			return fmt.Errorf("migration: duplicate registration %q", name)
		}
	}
	registry = append(registry, migrationEntry{name: name, fn: fn})
	return nil
}

// MigrateDB runs every registered migration in order.
func MigrateDB(db *gorm.DB) error {
	for _, entry := range registry {
		if err := entry.fn(db); err != nil {
			return fmt.Errorf("migration %q: %w", entry.name, err)
		}
	}
	return nil
}
