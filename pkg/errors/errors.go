// Package errors provides the typed errors of rollcall.
//
// Reconciliation never fails on bad data: unparseable amounts degrade to
// zero, unmatched records are counted and malformed nested sections are
// annotated inline. The types here are returned by configuration, source
// loading and persistence, and each one answers errors.Is for a sentinel so
// callers can branch without type assertions.
package errors

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below.
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates a configuration that cannot produce a run
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMalformed indicates a source or stored document that could not be decoded
	ErrMalformed = errors.New("malformed data")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError reports a missing source, file or stored run.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError reports an option or setting that was rejected at
// construction time.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return "invalid input: " + e.Message
}

// Is matches ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError reports configuration that decoded or validated badly as a
// whole, for example a run with no sources.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Component != "" {
		msg += " in " + e.Component
	}
	msg += ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// MergeError reports a secondary source that cannot be joined onto the
// primary, for example because their key fields have different shapes.
type MergeError struct {
	Secondary string
	Primary   string
	// Fields are the key fields involved.
	Fields []string
	Err    error
}

func (e *MergeError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("cannot join %s onto %s (key fields %v): %v", e.Secondary, e.Primary, e.Fields, e.Err)
	}
	return fmt.Sprintf("cannot join %s onto %s: %v", e.Secondary, e.Primary, e.Err)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}

// NewMergeError creates a new MergeError.
func NewMergeError(secondary, primary string, fields []string, err error) *MergeError {
	return &MergeError{Secondary: secondary, Primary: primary, Fields: fields, Err: err}
}

// ParseError reports a document that could not be decoded. Record is the
// 1-based record (row, array element or list item) at fault, 0 when the
// document failed as a whole.
type ParseError struct {
	Format  string
	File    string
	Record  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	where := e.Format
	if e.File != "" {
		where += " file " + e.File
	}
	if e.Record > 0 {
		where += fmt.Sprintf(" at record %d", e.Record)
	}
	return fmt.Sprintf("cannot parse %s: %s", where, e.Message)
}

// Is matches ErrMalformed.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformed
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// RecordError marks err as the failure of one record. WrapParse fills in
// the format and file later.
func RecordError(record int, err error) *ParseError {
	return &ParseError{Record: record, Message: err.Error(), Err: err}
}

// IOError reports a failed file or database operation.
type IOError struct {
	Operation string // "read", "write", "create", "rename", "open"
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ResourceError reports a failed operation on a named resource such as a
// source load or a stored run.
type ResourceError struct {
	Operation string // "load", "save", "query"
	Resource  string // "source", "run", "records", "profiles"
	ID        string
	Err       error
}

func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %v", e.Operation, e.Resource, e.ID, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConfigError checks if an error is a configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// IsMalformed checks if an error is a parse error.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}

// WrapValidation wraps an error as a ValidationError.
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// WrapResource wraps an error as a ResourceError.
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Err: err}
}

// WrapParse wraps an error as a ParseError. A ParseError from RecordError
// keeps its record number and gains format and file.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ParseError
	if errors.As(err, &pe) && pe.Format == "" {
		pe.Format, pe.File = format, file
		return pe
	}
	return NewParseError(format, file, err.Error(), err)
}
