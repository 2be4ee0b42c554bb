package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConstraintErrors(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "application_one_active_idx"})
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "evaluation_application_id_fkey"}

	assert.True(t, IsDuplicateKeyError(unique))
	assert.True(t, IsDuplicateConstraintError(unique, "application_one_active_idx"))
	assert.False(t, IsDuplicateConstraintError(unique, "student_email_address_key"))
	assert.False(t, IsDuplicateKeyError(fk))

	assert.True(t, IsForeignKeyError(fk, ""))
	assert.True(t, IsForeignKeyError(fk, "evaluation_application_id_fkey"))
	assert.False(t, IsForeignKeyError(fk, "other_fkey"))
	assert.False(t, IsForeignKeyError(errors.New("boom"), ""))
}
