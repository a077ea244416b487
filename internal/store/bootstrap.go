package store

import (
	"context"
	"fmt"
)

// Bootstrap creates the identity tables if they do not exist.
func (s *Store) Bootstrap(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, s.Dialect.SystemTablesSQL()); err != nil {
		return fmt.Errorf("bootstrap identity tables: %w", err)
	}
	return nil
}
