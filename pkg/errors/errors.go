package errors

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/small-frappuccino/richpresence/pkg/log"
)

// ErrorCategory classifies failures the user can see.
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryDuplicate  ErrorCategory = "duplicate"
	CategoryNotFound   ErrorCategory = "not_found"
	CategoryConnection ErrorCategory = "connection"
	CategoryUpdate     ErrorCategory = "update"
	CategoryIO         ErrorCategory = "io"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity represents the severity level of errors
type ErrorSeverity string

const (
	SeverityLow      ErrorSeverity = "low"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityHigh     ErrorSeverity = "high"
	SeverityCritical ErrorSeverity = "critical"
)

// ServiceError represents a standardized error in the system
type ServiceError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Operation string        `json:"operation"`
	Component string        `json:"component"`
	Cause     error         `json:"-"`
	Timestamp time.Time     `json:"timestamp"`
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// NewServiceError creates a new service error with the specified parameters
func NewServiceError(category ErrorCategory, severity ErrorSeverity, component, operation, message string, cause error) *ServiceError {
	return &ServiceError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Operation: operation,
		Component: component,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// Validation reports bad user input; nothing was mutated.
func Validation(component, operation, message string) *ServiceError {
	return NewServiceError(CategoryValidation, SeverityLow, component, operation, message, nil)
}

// Duplicate reports a name collision on create or copy.
func Duplicate(component, operation, name string) *ServiceError {
	return NewServiceError(CategoryDuplicate, SeverityLow, component, operation, fmt.Sprintf("profile %q already exists", name), nil)
}

// NotFound reports a reference to a profile that does not exist.
func NotFound(component, operation, name string) *ServiceError {
	return NewServiceError(CategoryNotFound, SeverityLow, component, operation, fmt.Sprintf("profile %q not found", name), nil)
}

// IO wraps a file or database failure.
func IO(component, operation string, cause error) *ServiceError {
	return NewServiceError(CategoryIO, SeverityHigh, component, operation, fmt.Sprintf("%s failed", operation), cause)
}

// CategoryOf returns the category of the first ServiceError in err's chain, or internal.
func CategoryOf(err error) ErrorCategory {
	var se *ServiceError
	if stderrors.As(err, &se) {
		return se.Category
	}
	return CategoryInternal
}

// IsCategory reports whether err carries the given category.
func IsCategory(err error, category ErrorCategory) bool {
	return err != nil && CategoryOf(err) == category
}

// Log writes err at a level derived from its severity.
func Log(err error) {
	if err == nil {
		return
	}
	var se *ServiceError
	if !stderrors.As(err, &se) {
		log.ErrorLoggerRaw().Error("Unclassified error", "err", err)
		return
	}

	args := []any{
		"category", se.Category,
		"component", se.Component,
		"operation", se.Operation,
		"err", se.Error(),
	}
	switch se.Severity {
	case SeverityLow:
		log.ApplicationLogger().Info(se.Message, args...)
	case SeverityMedium:
		log.ApplicationLogger().Warn(se.Message, args...)
	case SeverityHigh:
		log.ApplicationLogger().Error(se.Message, args...)
	default:
		log.ErrorLoggerRaw().Error(se.Message, args...)
	}
}
