package database

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the embedded schema. It is safe to run repeatedly.
func Migrate(ctx context.Context, db DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// HostelTables lists data tables in truncation-safe order
var HostelTables = []string{
	"activity_logs",
	"login_attempts",
	"payments",
	"occupants",
	"inquiries",
	"staff_members",
	"site_settings",
	"accounts",
}
