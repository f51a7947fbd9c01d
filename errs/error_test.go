package errs_test

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"contactbook/errs"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *errs.Error
		expected string
	}{
		{
			name:     "basic error",
			err:      &errs.Error{Code: errs.EINVALID, Message: "invalid email"},
			expected: "application error: code=invalid message=invalid email",
		},
		{
			name:     "storage write error hides cause from text",
			err:      &errs.Error{Code: errs.ESTORAGEWRITE, Message: "cannot save contact", Err: fs.ErrPermission},
			expected: "application error: code=storage_write message=cannot save contact",
		},
		{
			name:     "empty message",
			err:      &errs.Error{Code: errs.EINTERNAL},
			expected: "application error: code=internal message=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			err:      nil,
			expected: "",
		},
		{
			name:     "application error returns its code",
			err:      &errs.Error{Code: errs.EINVALID, Message: "invalid name"},
			expected: errs.EINVALID,
		},
		{
			name:     "storage read error",
			err:      &errs.Error{Code: errs.ESTORAGEREAD, Message: "cannot load"},
			expected: errs.ESTORAGEREAD,
		},
		{
			name:     "non-application error returns EINTERNAL",
			err:      errors.New("standard error"),
			expected: errs.EINTERNAL,
		},
		{
			name:     "application error wrapped with fmt.Errorf",
			err:      fmt.Errorf("add: %w", &errs.Error{Code: errs.ESTORAGEWRITE, Message: "disk full"}),
			expected: errs.ESTORAGEWRITE,
		},
		{
			name:     "joined application error",
			err:      errors.Join(&errs.Error{Code: errs.ENOTFOUND, Message: "no contact"}),
			expected: errs.ENOTFOUND,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errs.ErrorCode(tt.err)
			if got != tt.expected {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			err:      nil,
			expected: "",
		},
		{
			name:     "application error returns its message",
			err:      &errs.Error{Code: errs.EINVALID, Message: "invalid email"},
			expected: "invalid email",
		},
		{
			name:     "non-application error returns Internal error",
			err:      errors.New("disk write error"),
			expected: "Internal error.",
		},
		{
			name:     "wrapped application error",
			err:      fmt.Errorf("ctx: %w", &errs.Error{Code: errs.ENOTFOUND, Message: "contact not found"}),
			expected: "contact not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errs.ErrorMessage(tt.err)
			if got != tt.expected {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorf(t *testing.T) {
	err := errs.Errorf(errs.ENOTFOUND, "contact at position %d not found", 3)

	if err.Code != errs.ENOTFOUND {
		t.Errorf("Errorf().Code = %q, want %q", err.Code, errs.ENOTFOUND)
	}
	if err.Message != "contact at position 3 not found" {
		t.Errorf("Errorf().Message = %q", err.Message)
	}
	if err.Err != nil {
		t.Errorf("Errorf().Err = %v, want nil", err.Err)
	}
}

func TestWrapf(t *testing.T) {
	cause := fs.ErrPermission
	err := errs.Wrapf(errs.ESTORAGEWRITE, cause, "cannot save contact: %v", cause)

	if err.Code != errs.ESTORAGEWRITE {
		t.Errorf("Wrapf().Code = %q, want %q", err.Code, errs.ESTORAGEWRITE)
	}
	if err.Message != "cannot save contact: permission denied" {
		t.Errorf("Wrapf().Message = %q", err.Message)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("Wrapf() result should unwrap to its cause")
	}
}

func TestErrorCodes(t *testing.T) {
	codes := map[string]string{
		"ECONFLICT":       errs.ECONFLICT,
		"EINTERNAL":       errs.EINTERNAL,
		"EINVALID":        errs.EINVALID,
		"ENOTFOUND":       errs.ENOTFOUND,
		"ENOTIMPLEMENTED": errs.ENOTIMPLEMENTED,
		"EUNAUTHORIZED":   errs.EUNAUTHORIZED,
		"ESTORAGEREAD":    errs.ESTORAGEREAD,
		"ESTORAGEWRITE":   errs.ESTORAGEWRITE,
	}

	expected := map[string]string{
		"ECONFLICT":       "conflict",
		"EINTERNAL":       "internal",
		"EINVALID":        "invalid",
		"ENOTFOUND":       "not_found",
		"ENOTIMPLEMENTED": "not_implemented",
		"EUNAUTHORIZED":   "unauthorized",
		"ESTORAGEREAD":    "storage_read",
		"ESTORAGEWRITE":   "storage_write",
	}

	for name, code := range codes {
		if code != expected[name] {
			t.Errorf("constant %s = %q, want %q", name, code, expected[name])
		}
	}
}
