package core

// error_messages.go maps technical errors to user-facing messages with a
// support code. Report entries carry the code so a user can quote it.
//
// # Codes
//
//	CFG001  no column selected for numeric conversion
//	CFG002  find and replace text required
//	VAL005  column not found
//	VAL007  values coerced to missing
//	FILE001 file too large
//	FILE002 invalid csv / parse error / ragged row
//	FILE003 invalid utf-8 in a cell
//	FILE004 no file provided
//	FILE005 empty file
//	FILE006 unsupported format
//	FILE007 invalid spreadsheet
//	FILE008 unsupported text encoding
//	FILE009 worksheet not found
//	SES001  session not found
//	SES002  too many sessions
//	STORE001 store not configured
//	STORE002 invalid table name
//	STORE003 table already exists
//	DB004-DB007 database connectivity
//	UPL002  too many concurrent loads
//	UPL004  context canceled
//	UPL005  context deadline exceeded
//	RATE001 rate limit
//	ERR000  fallback
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

var errorPatterns = []errorPattern{
	// =========================================================================
	// Cleaning configuration (CFG)
	// =========================================================================
	{
		pattern: "no column selected",
		msg: UserMessage{
			Message: "No column selected for numeric conversion",
			Action:  "Choose a column to convert",
			Code:    "CFG001",
		},
	},
	{
		pattern: "find and replace text required",
		msg: UserMessage{
			Message: "Find and replace text are both required",
			Action:  "Enter the text to find and the text to replace it with",
			Code:    "CFG002",
		},
	},

	// =========================================================================
	// Dataset validation (VAL)
	// =========================================================================
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "Column not found in the dataset",
			Action:  "Check that the column name matches a header exactly",
			Code:    "VAL005",
		},
	},
	{
		pattern: "values coerced to missing",
		msg: UserMessage{
			Message: "Some values could not be converted to numbers",
			Action:  "Those cells are now missing; review the column before saving",
			Code:    "VAL007",
		},
	},

	// =========================================================================
	// File errors (FILE)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with consistent columns",
			Code:    "FILE002",
		},
	},
	{
		pattern: "parse error",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Check quoting around the reported line",
			Code:    "FILE002",
		},
	},
	{
		pattern: "more fields than the header",
		msg: UserMessage{
			Message: "A row has more fields than the header",
			Action:  "Ensure every row has the same number of columns as the header",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unsupported encoding",
		msg: UserMessage{
			Message: "Unsupported text encoding",
			Action:  "Use utf-8, windows-1252 or iso-8859-1",
			Code:    "FILE008",
		},
	},
	{
		pattern: "invalid utf-8",
		msg: UserMessage{
			Message: "Data contains invalid characters",
			Action:  "Reload the file with the correct encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV or Excel file",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file is empty",
			Action:  "Please load a file with a header row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported format",
		msg: UserMessage{
			Message: "Unsupported file format",
			Action:  "Use CSV (*.csv) or Excel (*.xlsx)",
			Code:    "FILE006",
		},
	},
	{
		pattern: "invalid spreadsheet",
		msg: UserMessage{
			Message: "File is not a valid Excel workbook",
			Action:  "Save the workbook as .xlsx and try again",
			Code:    "FILE007",
		},
	},
	{
		pattern: "not a valid zip",
		msg: UserMessage{
			Message: "File is not a valid Excel workbook",
			Action:  "Save the workbook as .xlsx and try again",
			Code:    "FILE007",
		},
	},
	{
		pattern: "sheet not found",
		msg: UserMessage{
			Message: "The workbook has no sheet with that name",
			Action:  "Check the sheet name or leave it blank to use the first sheet",
			Code:    "FILE009",
		},
	},

	// =========================================================================
	// Sessions (SES)
	// =========================================================================
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "No data loaded",
			Action:  "Load a file first. Idle sessions expire",
			Code:    "SES001",
		},
	},
	{
		pattern: "too many sessions",
		msg: UserMessage{
			Message: "Too many open datasets",
			Action:  "Close a dataset or wait for idle ones to expire",
			Code:    "SES002",
		},
	},

	// =========================================================================
	// Export stores (STORE, DB)
	// =========================================================================
	{
		pattern: "store not configured",
		msg: UserMessage{
			Message: "No database is configured for export",
			Action:  "Set STORE_DRIVER and STORE_DSN, or download the file instead",
			Code:    "STORE001",
		},
	},
	{
		pattern: "invalid table name",
		msg: UserMessage{
			Message: "Invalid table name",
			Action:  "Use letters, digits and underscores, starting with a letter",
			Code:    "STORE002",
		},
	},
	{
		pattern: "already exists",
		msg: UserMessage{
			Message: "A table with this name already exists",
			Action:  "Choose a different table name",
			Code:    "STORE003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// =========================================================================
	// Request lifecycle (UPL, RATE)
	// =========================================================================
	{
		pattern: "too many concurrent loads",
		msg: UserMessage{
			Message: "System is busy loading other files",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
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

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or the ERR000 fallback.
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

// IsUserFacing reports whether err matches a known pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
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

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
