package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InvalidDepth indicates a negative depth was passed to the registry
	InvalidDepth ErrorCode = "INVALID_DEPTH"
	// DepthJump indicates the traversal went more than one level deeper than the previous node
	DepthJump ErrorCode = "DEPTH_JUMP"
	// SiblingMismatch indicates the sibling flag contradicts the open traversal frames
	SiblingMismatch ErrorCode = "SIBLING_MISMATCH"
	// DuplicateNode indicates an id was registered twice in one pass
	DuplicateNode ErrorCode = "DUPLICATE_NODE"
	// RegistryDestroyed indicates registration after the pass was destroyed
	RegistryDestroyed ErrorCode = "REGISTRY_DESTROYED"
	// ElementNotFound indicates a strict element lookup failed
	ElementNotFound ErrorCode = "ELEMENT_NOT_FOUND"
	// NodeNotIndexed indicates a query named an id the current pass has not seen
	NodeNotIndexed ErrorCode = "NODE_NOT_INDEXED"
	// UnsupportedSource indicates no source reader handles the input
	UnsupportedSource ErrorCode = "UNSUPPORTED_SOURCE"
	// ParseFailed indicates the input could not be parsed
	ParseFailed ErrorCode = "PARSE_FAILED"
	// ParserUnavailable indicates the binary was built without the tree-sitter parser
	ParserUnavailable ErrorCode = "PARSER_UNAVAILABLE"
	// PassCancelled indicates the context was cancelled mid-pass
	PassCancelled ErrorCode = "PASS_CANCELLED"
	// PassNotStored indicates a database holds no pass with the requested id
	PassNotStored ErrorCode = "PASS_NOT_STORED"
	// ExportFailed indicates a snapshot could not be written
	ExportFailed ErrorCode = "EXPORT_FAILED"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
	// Rebuild suggests rebuilding the binary with different settings
	Rebuild FixActionType = "rebuild"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// DomkeyError represents an error with code, message, and suggestions
type DomkeyError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new DomkeyError with the default fixes for its code
func New(code ErrorCode, message string, cause error) *DomkeyError {
	return &DomkeyError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf is New with a formatted message and no cause
func Newf(code ErrorCode, format string, args ...interface{}) *DomkeyError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *DomkeyError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomkeyError) Unwrap() error {
	return e.cause
}

// Is matches any DomkeyError carrying the same code, so callers can
// compare against sentinel values built with New.
func (e *DomkeyError) Is(target error) bool {
	t, ok := target.(*DomkeyError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetails adds details to the error
func (e *DomkeyError) WithDetails(details interface{}) *DomkeyError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first DomkeyError in err's chain,
// or InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var de *DomkeyError
	if errors.As(err, &de) {
		return de.Code
	}
	return InternalError
}

// HasCode reports whether err's chain carries the given code
func HasCode(err error, code ErrorCode) bool {
	var de *DomkeyError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	DepthJump: {
		{
			Type:        OpenDocs,
			Description: "Register nodes in pre-order; a child must directly follow its parent or a sibling",
		},
	},
	SiblingMismatch: {
		{
			Type:        RunCommand,
			Command:     "domkey index --strict=false ${input}",
			Safe:        true,
			Description: "Index in lenient mode to list every contract violation",
		},
	},
	ParserUnavailable: {
		{
			Type:        Rebuild,
			Command:     "CGO_ENABLED=1 go build ./cmd/domkey",
			Safe:        true,
			Description: "HTML parsing needs tree-sitter, which requires cgo",
		},
	},
	PassNotStored: {
		{
			Type:        RunCommand,
			Command:     "domkey index ${input} --sqlite ${db}",
			Safe:        true,
			Description: "Store a pass of the input before verifying against the database",
		},
	},
	UnsupportedSource: {
		{
			Type:        OpenDocs,
			Description: "Supported inputs: .html, .htm, .vue, .yaml, .yml, .json, .toml",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
