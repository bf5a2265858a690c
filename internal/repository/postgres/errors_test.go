package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestErrorClassification(t *testing.T) {
	unique := &pgconn.PgError{Code: codeUniqueViolation}
	foreignKey := &pgconn.PgError{Code: codeForeignKeyViolation}

	tests := []struct {
		name       string
		err        error
		duplicate  bool
		foreignKey bool
		noRows     bool
	}{
		{"unique violation", unique, true, false, false},
		{"wrapped unique violation", fmt.Errorf("insert row: %w", unique), true, false, false},
		{"foreign key violation", foreignKey, false, true, false},
		{"wrapped foreign key violation", fmt.Errorf("insert link: %w", foreignKey), false, true, false},
		{"no rows", pgx.ErrNoRows, false, false, true},
		{"wrapped no rows", fmt.Errorf("get row: %w", pgx.ErrNoRows), false, false, true},
		{"plain error", errors.New("connection refused"), false, false, false},
		{"nil", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPgDuplicateError(tt.err); got != tt.duplicate {
				t.Errorf("IsPgDuplicateError = %v, want %v", got, tt.duplicate)
			}
			if got := IsPgForeignKeyError(tt.err); got != tt.foreignKey {
				t.Errorf("IsPgForeignKeyError = %v, want %v", got, tt.foreignKey)
			}
			if got := IsPgNoRowsError(tt.err); got != tt.noRows {
				t.Errorf("IsPgNoRowsError = %v, want %v", got, tt.noRows)
			}
		})
	}
}
