package config

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by configuration operations.
var (
	// ErrSettingNotFound indicates the setting path doesn't exist.
	ErrSettingNotFound = errors.New("setting not found")

	// ErrFileNotFound indicates the configuration file doesn't exist.
	ErrFileNotFound = errors.New("config file not found")

	// ErrFileExists is returned when a template would overwrite a file.
	ErrFileExists = errors.New("config file already exists")

	// ErrValidationFailed wraps every ValidationErrors value.
	ErrValidationFailed = errors.New("validation failed")
)

// TypeError reports a setting whose value has the wrong type.
type TypeError struct {
	Path     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// ValidationError describes a validation failure for a setting.
type ValidationError struct {
	// Path is the setting path that failed validation.
	Path string
	// Message describes the validation error.
	Message string
	// Value is the invalid value.
	Value any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}

// ValidationErrors collects every problem found in one config.
type ValidationErrors []error

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// Is makes errors.Is(err, ErrValidationFailed) true.
func (e ValidationErrors) Is(target error) bool {
	return target == ErrValidationFailed
}

// Unwrap returns the individual errors.
func (e ValidationErrors) Unwrap() []error {
	return e
}

// errorList accumulates errors while decoding and validating.
type errorList struct {
	errs ValidationErrors
}

func (l *errorList) add(err error) {
	if err != nil {
		l.errs = append(l.errs, err)
	}
}

func (l *errorList) invalid(path, message string, value any) {
	l.errs = append(l.errs, &ValidationError{Path: path, Message: message, Value: value})
}

func (l *errorList) err() error {
	if len(l.errs) == 0 {
		return nil
	}
	return l.errs
}
