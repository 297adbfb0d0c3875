package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeInvalidQuantity, status: http.StatusBadRequest, publicMsg: "invalid quantity", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeStorage, status: http.StatusServiceUnavailable, publicMsg: "storage unavailable", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection reset")
	err := Wrap(CodeStorage, cause, "add cart item")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped error to unwrap to cause")
	}
	if err.Code() != CodeStorage {
		t.Fatalf("expected storage code, got %s", err.Code())
	}

	outer := fmt.Errorf("handler: %w", err)
	if !HasCode(outer, CodeStorage) {
		t.Fatal("expected HasCode to see through fmt wrapping")
	}
	if HasCode(outer, CodeNotFound) {
		t.Fatal("unexpected not found code")
	}
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeInvalidQuantity, "quantity must be positive").WithDetails(map[string]any{"quantity": 0})
	details, ok := err.Details().(map[string]any)
	if !ok || details["quantity"] != 0 {
		t.Fatalf("unexpected details %#v", err.Details())
	}
}

func TestDumpExtractsPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_carts_user_id", TableName: "carts"}
	dump := Dump(Wrap(CodeStorage, pgErr, "insert cart"))

	if dump.Code != CodeStorage {
		t.Fatalf("expected storage code, got %s", dump.Code)
	}
	if dump.PGCode != "23505" || dump.PGConstraint != "uq_carts_user_id" || dump.PGTable != "carts" {
		t.Fatalf("unexpected pg fields %+v", dump)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected chain of 2, got %v", dump.Chain)
	}

	pqDump := Dump(&pq.Error{Code: "23503", Table: "cart_items"})
	if pqDump.PGCode != "23503" || pqDump.PGTable != "cart_items" {
		t.Fatalf("unexpected pq fields %+v", pqDump)
	}

	fields := pqDump.Fields()
	if _, ok := fields["pg_constraint"]; ok {
		t.Fatal("expected empty pg fields to be skipped")
	}
	if fields["pg_code"] != "23503" {
		t.Fatalf("unexpected fields %#v", fields)
	}
}
