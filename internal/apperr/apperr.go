// Package apperr defines the closed set of error kinds a request can end in
// and the mapping from low-level failures onto them.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind discriminates Error values.
type Kind int

const (
	KindApp Kind = iota
	KindNotFound
	KindValidation
	KindDatabase
	KindUnauthorized
	KindCreation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFoundError"
	case KindValidation:
		return "ValidationError"
	case KindDatabase:
		return "DatabaseError"
	case KindUnauthorized:
		return "UnauthorizedError"
	case KindCreation:
		return "CreationError"
	default:
		return "AppError"
	}
}

// Error is a classified failure. Only Message is meant for clients; Cause is
// kept for server-side logs.
type Error struct {
	Kind       Kind
	Message    string
	EntityType string
	EntityID   string
	Field      string
	Value      any
	Operation  string
	Cause      error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }

// Fields returns the diagnostic attributes of e for structured logging.
func (e *Error) Fields() map[string]any {
	fields := map[string]any{"kind": e.Kind.String()}
	if e.EntityType != "" {
		fields["entity"] = e.EntityType
	}
	if e.EntityID != "" {
		fields["entity_id"] = e.EntityID
	}
	if e.Field != "" {
		fields["field"] = e.Field
	}
	if e.Operation != "" {
		fields["operation"] = e.Operation
	}
	if e.Cause != nil {
		fields["cause"] = e.Cause.Error()
	}
	return fields
}

func NotFound(entityType, entityID string) *Error {
	if entityID == "" {
		entityID = "unknown"
	}
	msg := fmt.Sprintf("%s with ID %s not found", entityType, entityID)
	if entityID == "unknown" {
		msg = entityType + " not found"
	}
	return &Error{Kind: KindNotFound, Message: msg, EntityType: entityType, EntityID: entityID}
}

func Validation(message, field string, value any) *Error {
	return &Error{Kind: KindValidation, Message: message, Field: field, Value: value}
}

func Database(operation, message string, cause error) *Error {
	if message == "" {
		message = "Database error during " + operation
	}
	return &Error{Kind: KindDatabase, Message: message, Operation: operation, Cause: cause}
}

func Unauthorized(message string, cause error) *Error {
	return &Error{Kind: KindUnauthorized, Message: message, Cause: cause}
}

func Creation(entityType, message string, cause error) *Error {
	return &Error{Kind: KindCreation, Message: message, EntityType: entityType, Cause: cause}
}

func App(message string, cause error) *Error {
	return &Error{Kind: KindApp, Message: message, Cause: cause}
}

// As returns the classified error inside err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Classify maps err onto exactly one kind. The first matching rule wins:
// an already classified error, a unique violation, a foreign key violation,
// any other SQL error code, a "not found" message, and finally a generic
// application error.
func Classify(err error, entityType, operation string) *Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}

	if code, ok := SQLState(err); ok {
		switch code {
		case CodeUniqueViolation:
			return &Error{
				Kind:       KindValidation,
				Message:    fmt.Sprintf("A %s with these details already exists", entityType),
				EntityType: entityType,
				Operation:  operation,
				Cause:      err,
			}
		case CodeForeignKeyViolation:
			return &Error{
				Kind:       KindValidation,
				Message:    fmt.Sprintf("Referenced %s does not exist", entityType),
				EntityType: entityType,
				Operation:  operation,
				Cause:      err,
			}
		}
		e := Database(operation, "", err)
		e.EntityType = entityType
		return e
	}

	if strings.Contains(strings.ToLower(err.Error()), "not found") {
		e := NotFound(entityType, "unknown")
		e.Cause = err
		return e
	}

	return App("Error during "+operation, err)
}

// Format renders err as the message returned to clients.
func Format(err error) string {
	e, ok := As(err)
	if !ok {
		return "An unexpected error occurred"
	}
	switch e.Kind {
	case KindNotFound:
		return "Not Found: " + e.Message
	case KindValidation:
		return "Validation Error: " + e.Message
	case KindDatabase:
		return "Database Error: " + e.Message
	case KindCreation:
		return "Creation Error: " + e.Message
	case KindUnauthorized:
		return "Unauthorized: " + e.Message
	default:
		return "Application Error: " + e.Message
	}
}

// HTTPStatus picks the response status for err.
func HTTPStatus(err error) int {
	e, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
