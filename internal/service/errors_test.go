package service

import (
	"errors"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "field and message",
			err: &ValidationError{
				Field:   "primaryText",
				Message: "cannot be empty",
			},
			want: "validation error on field primaryText: cannot be empty",
		},
		{
			name: "empty field",
			err: &ValidationError{
				Field:   "",
				Message: "invalid",
			},
			want: "validation error on field : invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ValidationError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		msg     string
		wantNil bool
		wantMsg string
	}{
		{
			name:    "nil error",
			err:     nil,
			msg:     "context",
			wantNil: true,
		},
		{
			name:    "wrapped error",
			err:     errors.New("original error"),
			msg:     "context",
			wantNil: false,
			wantMsg: "context: original error",
		},
		{
			name:    "empty message",
			err:     errors.New("original error"),
			msg:     "",
			wantNil: false,
			wantMsg: ": original error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapError(tt.err, tt.msg)
			if tt.wantNil {
				if got != nil {
					t.Errorf("WrapError() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Errorf("WrapError() = nil, want error")
				return
			}
			if got.Error() != tt.wantMsg {
				t.Errorf("WrapError() = %v, want %v", got.Error(), tt.wantMsg)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("WrapError() should wrap original error")
			}
		})
	}
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name   string
		err    error
		target error
		msg    string
	}{
		{
			name:   "validation",
			err:    &ValidationError{Field: "category", Message: "unknown category"},
			target: ErrValidation,
			msg:    "validation error on field category: unknown category",
		},
		{
			name:   "not found",
			err:    &NotFoundError{ID: "abc"},
			target: ErrNotFound,
			msg:    `note "abc" not found`,
		},
		{
			name:   "import parse",
			err:    &ImportParseError{Err: cause},
			target: ErrImportParse,
			msg:    "import failed: disk full",
		},
		{
			name:   "persistence",
			err:    &PersistenceError{Op: "add", Err: cause},
			target: ErrPersistence,
			msg:    "persistence error during add: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.target) {
				t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, tt.target)
			}
			if got := tt.err.Error(); got != tt.msg {
				t.Errorf("Error() = %q, want %q", got, tt.msg)
			}
		})
	}

	if !errors.Is(&PersistenceError{Op: "add", Err: cause}, cause) {
		t.Error("PersistenceError should wrap its cause")
	}
	if errors.Is(&PersistenceError{Op: "add", Err: cause}, ErrValidation) {
		t.Error("PersistenceError should not match ErrValidation")
	}
}
