package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestPersistenceError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    Kind
		message string
	}{
		{"gorm duplicate", gorm.ErrDuplicatedKey, KindConflict, "Duplicate entry found"},
		{"gorm foreign key", fmt.Errorf("insert: %w", gorm.ErrForeignKeyViolated), KindRelatedMissing, "Related record not found"},
		{"postgres unique", &pgconn.PgError{Code: "23505", ConstraintName: "idx_orders_payment_intent_id"}, KindConflict, "Duplicate entry found"},
		{"postgres foreign key", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23503"}), KindRelatedMissing, "Related record not found"},
		{"postgres other", &pgconn.PgError{Code: "40001"}, KindInternal, "Failed to save"},
		{"unknown", errors.New("disk full"), KindInternal, "Failed to save"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := persistenceError("Failed to save", tt.err)
			if got.Kind != tt.kind || got.Message != tt.message {
				t.Errorf("got %s %q, want %s %q", got.Kind, got.Message, tt.kind, tt.message)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("cause not preserved: %v", got)
			}
		})
	}
}

func TestPersistenceErrorConstraintDetails(t *testing.T) {
	got := persistenceError("x", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email", TableName: "users"})
	details, ok := got.Details.(map[string]string)
	if !ok || details["constraint"] != "idx_users_email" || details["table"] != "users" {
		t.Errorf("details = %#v", got.Details)
	}
}

func TestAsError(t *testing.T) {
	nf := notFound("Order not found")
	if got := AsError(fmt.Errorf("lookup: %w", nf)); got != nf {
		t.Errorf("wrapped service error not unwrapped: %v", got)
	}

	got := AsError(errors.New("boom"))
	if got.Kind != KindInternal || got.Stack == "" {
		t.Errorf("plain error = %+v", got)
	}
}
