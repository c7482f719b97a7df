package usecase_test

import (
	"errors"
	"fmt"
	"testing"

	"wastenot/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, usecase.KindConflict, usecase.KindOf(usecase.NewAppError(usecase.KindConflict, "x")))
	assert.Equal(t, usecase.KindInternal, usecase.KindOf(errors.New("plain")))

	//wrapされていても取れる
	wrapped := fmt.Errorf("outer: %w", usecase.NewAppError(usecase.KindForbidden, "no"))
	assert.True(t, usecase.IsKind(wrapped, usecase.KindForbidden))
	assert.False(t, usecase.IsKind(nil, usecase.KindInternal))
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &usecase.AppError{Kind: usecase.KindInternal, Message: "db error", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal: db error: disk full", err.Error())
	assert.Equal(t, "not_found: claim not found", usecase.NewAppError(usecase.KindNotFound, "claim not found").Error())
}
