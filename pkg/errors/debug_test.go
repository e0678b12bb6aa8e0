package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDumpCapturesCodeAndChain(t *testing.T) {
	base := fmt.Errorf("dial tcp: connection refused")
	err := Wrap(CodeDependency, base, "load order")

	d := Dump(err)
	if d.Code != CodeDependency {
		t.Fatalf("expected %s got %s", CodeDependency, d.Code)
	}
	if d.TopMessage == "" {
		t.Fatal("expected top message")
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected unwrap chain, got %v", d.Chain)
	}
}

func TestDumpUnpacksPgconnError(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "products_slug_key",
		TableName:      "products",
		Detail:         "Key (slug)=(gloves) already exists.",
		Message:        "duplicate key value violates unique constraint",
	}
	err := Wrap(CodeConflict, fmt.Errorf("create product: %w", pgErr), "persist product")

	d := Dump(err)
	if d.PGCode != "23505" {
		t.Fatalf("expected pg code 23505 got %q", d.PGCode)
	}
	if d.PGConstraint != "products_slug_key" || d.PGTable != "products" {
		t.Fatalf("expected constraint details, got %+v", d)
	}
}

func TestDumpNilError(t *testing.T) {
	d := Dump(nil)
	if d.TopMessage != "" || len(d.Chain) != 0 {
		t.Fatalf("expected empty dump, got %+v", d)
	}
}
