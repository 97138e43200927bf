// Package core provides the business logic for test-case management.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Input Warnings (INP001-INP099)
//
// Non-fatal conditions of the bulk import. They are shown as warnings, not failures:
//
//	INP001 - No input: Nothing was pasted
//	         Action: Paste the spreadsheet rows first
//	INP002 - No valid rows: No row had a title
//	         Action: Check that the first column holds the test-case title
//	INP003 - Nothing staged: There are no processed rows to fill the grid with
//	         Action: Process the pasted data first
//
// Input errors:
//
//	INP004 - Too large: The submitted data is too large
//	         Action: Split the data into smaller batches
//	INP005 - Unreadable request: The submitted data could not be read
//	         Action: Reload the page and try again
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid test case: Required fields are missing or invalid
//	         Action: Title and description are required
//	VAL002 - Invalid issue key: The key does not look like PROJ-123
//	         Action: Use the format PROJ-123
//	VAL003 - Missing parent: No parent requirement was selected
//	         Action: Search for a parent requirement first
//	VAL004 - Nothing being edited: No test case was opened for editing
//	         Action: Open a test case with Edit first
//
// # Tracker Errors (TRK001-TRK099)
//
//	TRK001 - Tracker unavailable: The test-case service could not be reached
//	         Action: Please try again in a few moments
//	TRK002 - Not found: The issue does not exist in the tracker
//	         Action: Verify the issue key
//	TRK003 - Tracker error: The test-case service rejected the request
//	         Action: Review the details and try again
//
// # Evidence Errors (EVD001-EVD099)
//
//	EVD001 - Processing in progress: Another evidence log is being processed
//	         Action: Wait for the current processing to finish
//	EVD002 - Invalid log file: Only HTML test-run logs are accepted
//	         Action: Select the .html log produced by the test run
//	EVD003 - No file: No log file was selected
//	         Action: Select a log file to upload
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Matching
//
// Sentinel errors are matched first with errors.Is, so wrapped errors keep
// their code. Remaining errors are matched case-insensitively against text
// patterns with strings.Contains; the first match wins.
package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidBody is returned when a request body cannot be decoded.
	ErrInvalidBody = errors.New("invalid request body")

	// ErrNothingStaged is returned when the grid is filled before any paste was processed.
	ErrNothingStaged = errors.New("nothing staged for import")

	// ErrInvalidIssueKey is returned for keys that do not look like PROJ-123.
	ErrInvalidIssueKey = errors.New("invalid issue key")

	// ErrNoParent is returned when an operation needs a parent requirement and none is set.
	ErrNoParent = errors.New("no parent requirement selected")

	// ErrNotEditing is returned when a save needs the session's edit target and none is set.
	ErrNotEditing = errors.New("no test case being edited")

	// ErrNotFound is returned when the tracker has no such issue.
	ErrNotFound = errors.New("issue not found")

	// ErrTrackerUnavailable is returned when the tracker cannot be reached.
	ErrTrackerUnavailable = errors.New("tracker unavailable")

	// ErrTrackerRejected is returned when the tracker answers with an error status.
	ErrTrackerRejected = errors.New("tracker rejected request")

	// ErrNoEvidenceFile is returned when an evidence upload carries no file.
	ErrNoEvidenceFile = errors.New("no log file provided")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
	Warning bool   // Shown as a warning rather than a failure
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

// sentinelMessages are checked in order with errors.Is.
var sentinelMessages = []sentinelMessage{
	{ErrNoInput, UserMessage{
		Message: "Nothing was pasted",
		Action:  "Paste the spreadsheet rows first",
		Code:    "INP001",
		Warning: true,
	}},
	{ErrNoValidRows, UserMessage{
		Message: "No valid test cases found in the pasted data",
		Action:  "Check that the first column holds the test-case title",
		Code:    "INP002",
		Warning: true,
	}},
	{ErrNothingStaged, UserMessage{
		Message: "There are no processed rows to fill the grid with",
		Action:  "Process the pasted data first",
		Code:    "INP003",
		Warning: true,
	}},
	{ErrInvalidBody, UserMessage{
		Message: "The submitted data could not be read",
		Action:  "Reload the page and try again",
		Code:    "INP005",
	}},
	{ErrValidation, UserMessage{
		Message: "Required fields are missing or invalid",
		Action:  "Title and description are required",
		Code:    "VAL001",
	}},
	{ErrInvalidIssueKey, UserMessage{
		Message: "The issue key is not valid",
		Action:  "Use the format PROJ-123",
		Code:    "VAL002",
	}},
	{ErrNoParent, UserMessage{
		Message: "No parent requirement was selected",
		Action:  "Search for a parent requirement first",
		Code:    "VAL003",
		Warning: true,
	}},
	{ErrNotEditing, UserMessage{
		Message: "No test case was opened for editing",
		Action:  "Open a test case with Edit first",
		Code:    "VAL004",
		Warning: true,
	}},
	{ErrTrackerUnavailable, UserMessage{
		Message: "The test-case service could not be reached",
		Action:  "Please try again in a few moments",
		Code:    "TRK001",
	}},
	{ErrNotFound, UserMessage{
		Message: "The issue does not exist in the tracker",
		Action:  "Verify the issue key",
		Code:    "TRK002",
	}},
	{ErrTrackerRejected, UserMessage{
		Message: "The test-case service rejected the request",
		Action:  "Review the details and try again",
		Code:    "TRK003",
	}},
	{ErrEvidenceInProgress, UserMessage{
		Message: "Another evidence log is being processed",
		Action:  "Wait for the current processing to finish",
		Code:    "EVD001",
		Warning: true,
	}},
	{ErrInvalidEvidenceFile, UserMessage{
		Message: "Only HTML test-run logs are accepted",
		Action:  "Select the .html log produced by the test run",
		Code:    "EVD002",
	}},
	{ErrNoEvidenceFile, UserMessage{
		Message: "No log file was selected",
		Action:  "Select a log file to upload",
		Code:    "EVD003",
		Warning: true,
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns catch errors that arrive without a sentinel, such as
// transport errors from net/http. Order matters: specific before general.
var errorPatterns = []errorPattern{
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "The test-case service could not be reached",
			Action:  "Please try again in a few moments",
			Code:    "TRK001",
		},
	},
	{
		pattern: "no such host",
		msg: UserMessage{
			Message: "The test-case service could not be reached",
			Action:  "Check the tracker address in the configuration",
			Code:    "TRK001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The request timed out",
			Action:  "Please try again",
			Code:    "TRK001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "The submitted data is too large",
			Action:  "Split the data into smaller batches",
			Code:    "INP004",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
// Support staff should check application logs for the original technical error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	_, err := core.ParsePasted("   ")
//	msg := MapError(err)
//	// msg.Code == "INP001", msg.Warning == true
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
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

// IsWarning reports whether err is a non-fatal condition to show as a warning.
func IsWarning(err error) bool {
	return err != nil && MapError(err).Warning
}

// IsUserFacing checks if an error matches a known sentinel or pattern.
// Returns false for the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while Error() gives the clean message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
