package api

import (
	"errors"
	"fmt"
)

type (
	// ErrorKind classifies a failed backend interaction
	ErrorKind string

	// ErrorRecord describes a failed backend interaction. The HTTP gateway
	// returns every expected failure as an ErrorRecord rather than a raw
	// transport or parse error
	ErrorRecord struct {
		Kind       ErrorKind `json:"kind"`
		Message    string    `json:"message"`
		HTTPStatus int       `json:"http_status,omitempty"`
		Raw        any       `json:"raw,omitempty"`
	}

	kindInfo struct {
		title       string
		message     string
		suggestions []string
	}
)

const (
	ErrorValidation  ErrorKind = "validation"
	ErrorNetwork     ErrorKind = "network"
	ErrorAuth        ErrorKind = "auth"
	ErrorServerError ErrorKind = "server_error"
	ErrorUnknown     ErrorKind = "unknown"
)

const (
	MsgNetworkFailure = "Unable to connect to the server. " +
		"Please check your internet connection."
	MsgParseFailure = "Failed to parse response from server"
	MsgHTMLResponse = "Received HTML response instead of JSON"
	MsgGenericError = "An error occurred"
)

var kinds = map[ErrorKind]kindInfo{
	ErrorNetwork: {
		title:   "Connection Error",
		message: MsgNetworkFailure,
		suggestions: []string{
			"Check your internet connection",
			"If the problem persists, try again later",
		},
	},
	ErrorAuth: {
		title:   "Authentication Error",
		message: "Your session may have expired. Please log in again.",
		suggestions: []string{
			"Try logging in again",
			"If the problem persists, contact support",
		},
	},
	ErrorValidation: {
		title:   "Invalid Input",
		message: "Please check your input and try again.",
		suggestions: []string{
			"Make sure all required fields are filled",
			"Check for any formatting requirements",
		},
	},
	ErrorServerError: {
		title:   "Server Error",
		message: "Something went wrong on our end.",
		suggestions: []string{
			"Try again in a few minutes",
			"If the problem persists, contact support",
		},
	},
	ErrorUnknown: {
		title:   "Unexpected Error",
		message: "An unexpected error occurred. Please try again.",
		suggestions: []string{
			"If the problem persists, contact support",
		},
	},
}

// Error implements the error interface
func (e *ErrorRecord) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches another ErrorRecord of the same kind, allowing errors.Is to
// be used against the kind sentinels
func (e *ErrorRecord) Is(target error) bool {
	var other *ErrorRecord
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind && other.Message == "" && other.HTTPStatus == 0
}

// NewError creates an ErrorRecord of the given kind
func NewError(kind ErrorKind, msg string) *ErrorRecord {
	return &ErrorRecord{Kind: kind, Message: msg}
}

// Validation creates a Validation ErrorRecord, used for failures detected
// before any network call
func Validation(msg string) *ErrorRecord {
	return NewError(ErrorValidation, msg)
}

// AsErrorRecord returns the ErrorRecord carried by err, or wraps err as an
// Unknown record. A nil error yields nil
func AsErrorRecord(err error) *ErrorRecord {
	if err == nil {
		return nil
	}
	var rec *ErrorRecord
	if errors.As(err, &rec) {
		return rec
	}
	return &ErrorRecord{Kind: ErrorUnknown, Message: err.Error()}
}

// KindOf returns the kind of err, or an empty kind if err is nil
func KindOf(err error) ErrorKind {
	if rec := AsErrorRecord(err); rec != nil {
		return rec.Kind
	}
	return ""
}

// Title returns a short user-facing title for the kind
func (k ErrorKind) Title() string {
	return kinds[k.orUnknown()].title
}

// DefaultMessage returns the user-facing message used when a record of
// this kind carries none
func (k ErrorKind) DefaultMessage() string {
	return kinds[k.orUnknown()].message
}

// Suggestions returns remedial hints for the kind
func (k ErrorKind) Suggestions() []string {
	return append([]string(nil), kinds[k.orUnknown()].suggestions...)
}

func (k ErrorKind) orUnknown() ErrorKind {
	if _, ok := kinds[k]; ok {
		return k
	}
	return ErrorUnknown
}
