package pgerr_test

import (
	"errors"
	"fmt"
	"testing"

	"orderflow/internal/adapters/out/postgres/pgerr"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	pgxErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_orders_lot_id"}
	pqErr := &pq.Error{Code: "23505", Constraint: "ux_orders_vin"}

	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"nil", nil, "", false},
		{"pgx any constraint", fmt.Errorf("insert: %w", pgxErr), "", true},
		{"pgx matching constraint", pgxErr, "ux_orders_lot_id", true},
		{"pgx other constraint", pgxErr, "ux_orders_vin", false},
		{"pgx other code", &pgconn.PgError{Code: "23503"}, "", false},
		{"lib/pq", pqErr, "ux_orders_vin", true},
		{"gorm translated", gorm.ErrDuplicatedKey, "", true},
		{"message only", errors.New(`ERROR: duplicate key value violates unique constraint "ux_orders_vin"`), "ux_orders_vin", true},
		{"unrelated", errors.New("connection refused"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pgerr.IsUniqueViolation(tt.err, tt.constraint))
		})
	}
}
