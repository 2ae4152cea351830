package errors

import (
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pg(code string) *pgconn.PgError { return &pgconn.PgError{Code: code} }

func TestDBErrorCodeMappings(t *testing.T) {
	cases := []struct {
		code string
		want ErrorCode
	}{
		{"23505", ErrorCodeConflict},
		{"23502", ErrorCodeValidation},
		{"22001", ErrorCodeInvalidArgument},
		{"22P02", ErrorCodeInvalidArgument},
		{"40001", ErrorCodeDB},
		{"25006", ErrorCodeUnavailable},
		{"57P03", ErrorCodeUnavailable},
		{"XXXXX", ErrorCodeDB},
	}
	for _, c := range cases {
		got, ok := DBErrorCode(pg(c.code))
		if !ok {
			t.Fatalf("expected ok for PgError code %s", c.code)
		}
		if got != c.want {
			t.Fatalf("DBErrorCode(%s) = %v, want %v", c.code, got, c.want)
		}
	}
	if _, ok := DBErrorCode(stderrs.New("nope")); ok {
		t.Fatalf("DBErrorCode should return ok=false for non-pg error")
	}
}

func TestFromPostgres(t *testing.T) {
	if FromPostgres(nil, "x") != nil {
		t.Fatalf("FromPostgres(nil) should be nil")
	}
	err := FromPostgresf(pg("25006"), "write %s", "kv")
	if !IsCode(err, ErrorCodeUnavailable) {
		t.Fatalf("code = %v", CodeOf(err))
	}
	if err.Error() != "write kv: "+pg("25006").Error() {
		t.Fatalf("message = %q", err.Error())
	}
	if !IsCode(FromPostgres(stderrs.New("plain"), "x"), ErrorCodeDB) {
		t.Fatalf("non-pg error should map to DB")
	}
}

func TestIsUndefinedTable(t *testing.T) {
	if !IsUndefinedTable(fmt.Errorf("wrap: %w", pg("42P01"))) {
		t.Fatalf("expected undefined table")
	}
	if IsUndefinedTable(pg("23505")) {
		t.Fatalf("unique violation is not undefined table")
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{pg("40001"), true},
		{pg("40P01"), true},
		{pg("55P03"), true},
		{pg("57P03"), true},
		{pg("23505"), false},
		{stderrs.New("commit unexpectedly resulted in rollback"), true},
		{stderrs.New("ERROR: deadlock detected"), true},
		{stderrs.New("syntax error"), false},
	}
	for _, c := range cases {
		if got := IsRetryable(c.err); got != c.want {
			t.Fatalf("IsRetryable(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
