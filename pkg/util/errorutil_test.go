package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	orig := NewDuplicateEmail("a@b.com")
	got := ToDomainError(orig)
	if got.Code != "DUPLICATE_EMAIL" {
		t.Errorf("expected DUPLICATE_EMAIL, got %s", got.Code)
	}
	if got.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", got.HTTPStatus)
	}
}

func TestToDomainErrorNoRows(t *testing.T) {
	got := ToDomainError(pgx.ErrNoRows)
	if got.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %s", got.Code)
	}
	if got.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected 404, got %d", got.HTTPStatus)
	}
}

func TestToDomainErrorUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505"}
	got := ToDomainError(pgErr)
	if got.Code != "DUPLICATE_EMAIL" {
		t.Errorf("expected DUPLICATE_EMAIL, got %s", got.Code)
	}
}

func TestToDomainErrorUnknown(t *testing.T) {
	got := ToDomainError(errors.New("boom"))
	if got.Code != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if got.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", got.HTTPStatus)
	}
}

func TestToDomainErrorNil(t *testing.T) {
	if got := ToDomainError(nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("expected unique violation to be detected")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violation misdetected as unique violation")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Error("plain error misdetected as unique violation")
	}
}
