package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalWrapsCause(t *testing.T) {
	err := Internal(sql.ErrConnDone, "failed to load subject")

	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "failed to load subject", err.Message)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Clone(ErrNotFound, "skill not found"))

	got := FromError(wrapped)
	assert.Equal(t, ErrNotFound.Code, got.Code)
	assert.Equal(t, "skill not found", got.Message)

	plain := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, ErrInternal.Message, plain.Message)
	assert.Nil(t, FromError(nil))
}

func TestCloneAndDetailsDoNotMutateSentinels(t *testing.T) {
	clone := Clone(ErrConflict, "skill already exists")
	detailed := WithDetails(ErrValidation, []string{"body.name"})

	assert.Equal(t, "conflict", ErrConflict.Message)
	assert.Equal(t, "skill already exists", clone.Message)
	assert.Nil(t, ErrValidation.Details)
	assert.Equal(t, []string{"body.name"}, detailed.Details)
}
