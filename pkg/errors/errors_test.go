package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
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
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
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

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestNewfAndIsCode(t *testing.T) {
	err := fmt.Errorf("service: %w", Newf(CodeNotFound, "campaign %q not found", "black-friday"))
	if !IsCode(err, CodeNotFound) {
		t.Fatalf("expected not found code in chain")
	}
	if IsCode(err, CodeConflict) {
		t.Fatalf("did not expect conflict code")
	}
	if got := As(err).Message(); got != `campaign "black-friday" not found` {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestDumpExtractsPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "discount_campaigns_code_key", TableName: "discount_campaigns", Message: "duplicate key value"}
	dump := Dump(Wrap(CodeConflict, pgErr, "create campaign"))
	if dump.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", dump.Code)
	}
	if dump.Driver != "postgres" || dump.DBCode != "23505" || dump.DBConstraint != "discount_campaigns_code_key" || dump.DBTable != "discount_campaigns" {
		t.Fatalf("unexpected pg fields %+v", dump)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", dump.Chain)
	}
}

func TestDumpExtractsPQFields(t *testing.T) {
	pqErr := &pq.Error{Code: "23503", Constraint: "price_tiers_product_id_fkey", Table: "price_tiers"}
	dump := Dump(fmt.Errorf("insert tier: %w", pqErr))
	if dump.DBCode != "23503" || dump.DBConstraint != "price_tiers_product_id_fkey" {
		t.Fatalf("unexpected pq fields %+v", dump)
	}
	if dump.Code != "" {
		t.Fatalf("untyped error should not carry a code")
	}
}

func TestDumpExtractsSQLiteCode(t *testing.T) {
	liteErr := sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}
	dump := Dump(fmt.Errorf("insert campaign: %w", liteErr))
	if dump.Driver != "sqlite" || dump.DBCode != "19/2067" {
		t.Fatalf("unexpected sqlite fields %+v", dump)
	}
}

func TestDumpFieldsSkipEmptyValues(t *testing.T) {
	fields := Dump(New(CodeNotFound, "campaign not found")).Fields()
	if fields["error_code"] != CodeNotFound {
		t.Fatalf("expected error_code, got %v", fields)
	}
	if _, ok := fields["db_code"]; ok {
		t.Fatalf("db fields should be omitted without a driver error: %v", fields)
	}
}

func TestDumpNil(t *testing.T) {
	if d := Dump(nil); d.TopMessage != "" || d.Chain != nil {
		t.Fatalf("expected empty dump for nil, got %+v", d)
	}
}

func TestPublicMessageRespectsCode(t *testing.T) {
	if got := New(CodeNotFound, "campaign not found").PublicMessage(); got != "campaign not found" {
		t.Fatalf("expected own message for not found, got %q", got)
	}
	if got := New(CodeInternal, "pq: relation missing").PublicMessage(); got != "internal server error" {
		t.Fatalf("internal message leaked: %q", got)
	}
	if got := New(CodeConflict, "").PublicMessage(); got != "conflict detected" {
		t.Fatalf("expected generic conflict message, got %q", got)
	}
	if got := Wrap(CodeDependency, stdErrors.New("dial tcp"), "load campaigns").Status(); got != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status %d", got)
	}
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("lookup: %w", New(CodeNotFound, "product not found"))
	if !stdErrors.Is(err, New(CodeNotFound, "")) {
		t.Fatal("expected code match through the chain")
	}
	if stdErrors.Is(err, New(CodeConflict, "")) {
		t.Fatal("different codes must not match")
	}
	wrapped := Wrap(CodeDependency, stdErrors.New("timeout"), "load product")
	if got := wrapped.Error(); got != "DEPENDENCY_ERROR: load product: timeout" {
		t.Fatalf("unexpected error text %q", got)
	}
}
