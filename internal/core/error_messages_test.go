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
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "file too large",
			err:         errors.New("file too large: exceeds 1048576 bytes"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds maximum size limit",
		},
		{
			name:        "missing csv",
			err:         errors.New("no csv provided"),
			wantCode:    "FILE004",
			wantMessage: "No CSV data was provided",
		},
		{
			name:        "project not found",
			err:         fmt.Errorf("get project: %w", errors.New("project not found")),
			wantCode:    "PRJ001",
			wantMessage: "Project not found",
		},
		{
			name:        "local store wins over connection refused",
			err:         errors.New("local store: dial tcp 127.0.0.1:5432: connection refused"),
			wantCode:    "STORE001",
			wantMessage: "Local storage is unavailable",
		},
		{
			name:        "backend connection refused",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "NET001",
			wantMessage: "Unable to reach the backend service",
		},
		{
			name:        "deadline",
			err:         errors.New("context deadline exceeded"),
			wantCode:    "NET002",
			wantMessage: "Request timed out",
		},
		{
			name:        "busy",
			err:         ErrTooManyJobs,
			wantCode:    "RATE002",
			wantMessage: "Server is busy processing other datasets",
		},
		{
			name:        "rate limit",
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
			err:         errors.New("VALIDATION FAILED: name"),
			wantCode:    "VAL002",
			wantMessage: "Some request fields are missing or invalid",
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
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(errors.New("project not found"))

	expected := "Project not found (Code: PRJ001). Refresh the project list and try again"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", errors.New("file too large: exceeds 10 bytes"), true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
