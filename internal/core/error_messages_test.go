package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
		wantWarning bool
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "no input is a warning",
			err:         ErrNoInput,
			wantCode:    "INP001",
			wantMessage: "Nothing was pasted",
			wantWarning: true,
		},
		{
			name:        "no valid rows is a warning",
			err:         ErrNoValidRows,
			wantCode:    "INP002",
			wantMessage: "No valid test cases found in the pasted data",
			wantWarning: true,
		},
		{
			name:        "wrapped sentinel keeps its code",
			err:         fmt.Errorf("fill grid: %w", ErrNothingStaged),
			wantCode:    "INP003",
			wantMessage: "There are no processed rows to fill the grid with",
			wantWarning: true,
		},
		{
			name:        "undecodable body",
			err:         fmt.Errorf("decode case: %w", ErrInvalidBody),
			wantCode:    "INP005",
			wantMessage: "The submitted data could not be read",
		},
		{
			name:        "validation errors map to VAL001",
			err:         ValidationErrors{{Field: "titulo", Message: "is required"}},
			wantCode:    "VAL001",
			wantMessage: "Required fields are missing or invalid",
		},
		{
			name:        "invalid issue key",
			err:         fmt.Errorf("load parent %q: %w", "abc", ErrInvalidIssueKey),
			wantCode:    "VAL002",
			wantMessage: "The issue key is not valid",
		},
		{
			name:        "nothing being edited is a warning",
			err:         ErrNotEditing,
			wantCode:    "VAL004",
			wantMessage: "No test case was opened for editing",
			wantWarning: true,
		},
		{
			name:        "tracker not found",
			err:         fmt.Errorf("get case: %w", ErrNotFound),
			wantCode:    "TRK002",
			wantMessage: "The issue does not exist in the tracker",
		},
		{
			name:        "evidence in progress",
			err:         ErrEvidenceInProgress,
			wantCode:    "EVD001",
			wantMessage: "Another evidence log is being processed",
			wantWarning: true,
		},
		{
			name:        "connection refused maps by pattern",
			err:         errors.New("dial tcp 127.0.0.1:5000: connect: connection refused"),
			wantCode:    "TRK001",
			wantMessage: "The test-case service could not be reached",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("Get \"http://tracker\": CONNECTION REFUSED"),
			wantCode:    "TRK001",
			wantMessage: "The test-case service could not be reached",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
			if got.Warning != tt.wantWarning {
				t.Errorf("MapError() warning = %v, want %v", got.Warning, tt.wantWarning)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrInvalidIssueKey)

	expected := "The issue key is not valid (Code: VAL002). Use the format PROJ-123"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsWarning(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"no input", ErrNoInput, true},
		{"no parent", fmt.Errorf("export: %w", ErrNoParent), true},
		{"validation", ValidationErrors{{Field: "descricao", Message: "is required"}}, false},
		{"unknown", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWarning(tt.err); got != tt.want {
				t.Errorf("IsWarning() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrNoValidRows,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("delete case: %w", ErrNotFound)
		userErr := NewUserError(techErr)

		if userErr.Error() != "The issue does not exist in the tracker" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		if !errors.Is(userErr, ErrNotFound) {
			t.Error("Unwrap() should return original error")
		}
	})
}
