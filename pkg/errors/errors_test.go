// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, action ids and unwind reporting

package errors_test

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"github.com/arthur-debert/portcfg/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "profile_not_found",
			code:    errors.ErrProfileNotFound,
			message: "profile not found",
			wantStr: "[PROFILE_NOT_FOUND] profile not found",
		},
		{
			name:    "invalid_input",
			code:    errors.ErrInvalidInput,
			message: "namespace is required",
			wantStr: "[INVALID_INPUT] namespace is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, errors.NoAction, err.ActionID)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "ignored"))

	cause := stderrors.New("disk full")
	err := errors.Wrapf(cause, errors.ErrFileWrite, "write %s", "AGENTS.md")
	require.NotNil(t, err)

	assert.Equal(t, "[FILE_WRITE] write AGENTS.md: disk full", err.Error())
	assert.True(t, stderrors.Is(err, cause))
}

func TestWithAction(t *testing.T) {
	err := errors.New(errors.ErrApplyFailed, "apply failed").WithAction("agents-block")
	assert.Equal(t, "agents-block", err.ActionID)
	assert.Equal(t, "agents-block", errors.GetActionID(err))

	err = errors.New(errors.ErrApplyFailed, "apply failed").WithAction("")
	assert.Equal(t, errors.NoAction, err.ActionID)

	assert.Equal(t, errors.NoAction, errors.GetActionID(stderrors.New("plain")))
}

func TestWithUnwind(t *testing.T) {
	cause := stderrors.New("source missing")
	unwind := fs.ErrPermission

	err := errors.Wrap(cause, errors.ErrUnwindFailed, "apply failed at action 'a'").WithUnwind(unwind)

	assert.Equal(t,
		"[UNWIND_FAILED] apply failed at action 'a': source missing; unwind failed: permission denied",
		err.Error())
	assert.True(t, stderrors.Is(err, cause), "original cause stays reachable")
	assert.True(t, stderrors.Is(err, fs.ErrPermission), "unwind failure stays reachable")
}

func TestIsMatchesByCode(t *testing.T) {
	err := errors.Newf(errors.ErrTxnNotFound, "transaction not found: %s", "x")

	assert.True(t, stderrors.Is(err, errors.New(errors.ErrTxnNotFound, "")))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrBackupMissing, "")))
	assert.True(t, errors.IsErrorCode(err, errors.ErrTxnNotFound))
	assert.Equal(t, errors.ErrTxnNotFound, errors.GetErrorCode(err))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("plain")))
}

func TestWithDetail(t *testing.T) {
	err := &errors.PortableConfigError{Code: errors.ErrInternal}
	err.WithDetail("path", "a.toml")
	assert.Equal(t, "a.toml", err.Details["path"])
}
