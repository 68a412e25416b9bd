package postgres

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL of every table scanflow reads or writes.
func Schema() string { return schemaSQL }

// Migrate creates missing tables and indexes. It is safe to run repeatedly.
func (m *TxManager) Migrate(ctx context.Context) error {
	if _, err := m.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
