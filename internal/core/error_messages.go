package core

// Error codes reference.
//
// Technical errors are mapped to messages users can act on. Each message
// carries a code users can quote to support staff.
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid request: the request body could not be decoded
//	         Patterns: "invalid request body"
//	VAL002 - Validation failed: a request field is missing or out of range
//	         Patterns: "validation failed"
//	VAL003 - Unknown export format
//	         Patterns: "unknown export format"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large          Patterns: "file too large"
//	FILE004 - No CSV provided         Patterns: "no csv provided"
//
// # Project Errors (PRJ001-PRJ099)
//
//	PRJ001 - Project not found        Patterns: "project not found"
//	PRJ002 - No stored dataset        Patterns: "no dataset rows stored"
//	PRJ003 - Invalid project id       Patterns: "invalid project id"
//
// # Storage Errors (STORE001-STORE099)
//
//	STORE001 - Local store failure    Patterns: "local store"
//
// # Network Errors (NET001-NET099)
//
//	NET001 - Backend unreachable      Patterns: "connection refused", "no such host", "backend unavailable"
//	NET002 - Backend timed out        Patterns: "context deadline exceeded", "timeout"
//	NET003 - Request cancelled        Patterns: "context canceled"
//	NET004 - Backend rejected request Patterns: "backend error"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Too many requests       Patterns: "rate limit"
//	RATE002 - Server busy             Patterns: "too many concurrent jobs"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the application logs for the
// original error.
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is ordered: specific before general.
var errorPatterns = []errorPattern{
	// Validation
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Send a JSON body matching the documented fields",
			Code:    "VAL001",
		},
	},
	{
		pattern: "validation failed",
		msg: UserMessage{
			Message: "Some request fields are missing or invalid",
			Action:  "Check the highlighted fields and try again",
			Code:    "VAL002",
		},
	},
	{
		pattern: "unknown export format",
		msg: UserMessage{
			Message: "Unknown export format",
			Action:  "Choose one of csv, xlsx, pipeline or explanation",
			Code:    "VAL003",
		},
	},

	// Input files
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no csv provided",
		msg: UserMessage{
			Message: "No CSV data was provided",
			Action:  "Upload a file, paste CSV text or load a sample",
			Code:    "FILE004",
		},
	},

	// Projects
	{
		pattern: "project not found",
		msg: UserMessage{
			Message: "Project not found",
			Action:  "Refresh the project list and try again",
			Code:    "PRJ001",
		},
	},
	{
		pattern: "no dataset rows stored",
		msg: UserMessage{
			Message: "No dataset rows stored for this project",
			Action:  "Save the project with a dataset before loading it",
			Code:    "PRJ002",
		},
	},
	{
		pattern: "invalid project id",
		msg: UserMessage{
			Message: "Invalid project id",
			Action:  "Use the id returned when the project was created",
			Code:    "PRJ003",
		},
	},

	// Local storage comes before network patterns: a store backed by a
	// database reports dial errors too.
	{
		pattern: "local store",
		msg: UserMessage{
			Message: "Local storage is unavailable",
			Action:  "Please try again or check the server storage settings",
			Code:    "STORE001",
		},
	},

	// Network and backend
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the backend service",
			Action:  "Please try again in a few moments",
			Code:    "NET001",
		},
	},
	{
		pattern: "no such host",
		msg: UserMessage{
			Message: "Unable to reach the backend service",
			Action:  "Please try again in a few moments",
			Code:    "NET001",
		},
	},
	{
		pattern: "backend unavailable",
		msg: UserMessage{
			Message: "Unable to reach the backend service",
			Action:  "Please try again in a few moments",
			Code:    "NET001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "NET002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "NET002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "NET003",
		},
	},
	{
		pattern: "backend error",
		msg: UserMessage{
			Message: "The backend service rejected the request",
			Action:  "Please try again or contact support",
			Code:    "NET004",
		},
	},

	// Throttling
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
	{
		pattern: "too many concurrent jobs",
		msg: UserMessage{
			Message: "Server is busy processing other datasets",
			Action:  "Please wait a moment and try again",
			Code:    "RATE002",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := errors.New("project not found: 42")
//	msg := MapError(err)
//	// msg.Code == "PRJ001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}
