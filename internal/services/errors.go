// internal/services/errors.go
package services

import (
	"errors"
	"net/http"

	"github.com/javajoker/license-console/internal/i18n"
	"github.com/javajoker/license-console/internal/ledger"
)

type FailureKind string

const (
	FailureInvalidInput FailureKind = "invalid_input"
	FailureUnauthorized FailureKind = "unauthorized"
	FailureForbidden    FailureKind = "forbidden"
	FailureNotFound     FailureKind = "not_found"
	FailureNotYetPaid   FailureKind = "not_yet_paid"
	FailureConflict     FailureKind = "conflict"
	FailureUnavailable  FailureKind = "unavailable"
)

// Failure is the structured outcome of a command or fetch that did not succeed.
// Message is ready to show to the operator.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Status  int         `json:"status,omitempty"`
	Action  string      `json:"action"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.cause
}

// Result carries either a value or a Failure, never both.
type Result[T any] struct {
	Value   T
	Failure *Failure
}

func (r Result[T]) OK() bool {
	return r.Failure == nil
}

func succeed[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

func fail[T any](failure *Failure) Result[T] {
	return Result[T]{Failure: failure}
}

// Classify maps an error from the ledger client onto the failure taxonomy.
// A server-supplied message wins over the kind's generic text.
func Classify(lang, action string, err error) *Failure {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}

	status := ledger.StatusOf(err)
	kind := kindOf(status)

	message := ""
	var apiErr *ledger.APIError
	if errors.As(err, &apiErr) {
		message = apiErr.Message
	}

	text := i18n.T(lang, genericKey(kind), action)
	if message != "" {
		text = i18n.T(lang, i18n.KeyFailureWithReason, action, message)
	}

	return &Failure{
		Kind:    kind,
		Status:  status,
		Action:  action,
		Message: text,
		cause:   err,
	}
}

// classifyCompletion treats a 404 from complete-renewal as an unpaid renewal.
func classifyCompletion(lang, action string, err error) *Failure {
	if ledger.IsNotFound(err) {
		return &Failure{
			Kind:    FailureNotYetPaid,
			Status:  http.StatusNotFound,
			Action:  action,
			Message: i18n.T(lang, i18n.KeyFailureNotYetPaid),
			cause:   err,
		}
	}
	return Classify(lang, action, err)
}

// invalidInput is raised locally, before any remote call.
func invalidInput(lang, action string, details interface{}, cause error) *Failure {
	return &Failure{
		Kind:    FailureInvalidInput,
		Status:  http.StatusBadRequest,
		Action:  action,
		Message: i18n.T(lang, i18n.KeyFailureInvalidInput, action),
		Details: details,
		cause:   cause,
	}
}

func kindOf(status int) FailureKind {
	switch status {
	case http.StatusBadRequest:
		return FailureInvalidInput
	case http.StatusUnauthorized:
		return FailureUnauthorized
	case http.StatusForbidden:
		return FailureForbidden
	case http.StatusNotFound:
		return FailureNotFound
	case http.StatusConflict:
		return FailureConflict
	default:
		return FailureUnavailable
	}
}

func genericKey(kind FailureKind) string {
	switch kind {
	case FailureInvalidInput:
		return i18n.KeyFailureInvalidInput
	case FailureUnauthorized:
		return i18n.KeyFailureUnauthorized
	case FailureForbidden:
		return i18n.KeyFailureForbidden
	case FailureNotFound:
		return i18n.KeyFailureNotFound
	case FailureConflict:
		return i18n.KeyFailureConflict
	default:
		return i18n.KeyFailureUnexpected
	}
}
