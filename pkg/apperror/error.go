package apperror

import (
	"fmt"
	"net/http"
)

// Error is a typed domain failure. Code identifies the violated invariant,
// StatusCode is the HTTP status handlers should respond with.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// InvalidQuantity rejects non-positive or out-of-range amounts.
func InvalidQuantity(message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       "INVALID_QUANTITY",
		Message:    message,
	}
}

// InsufficientStock rejects reserve/remove operations exceeding availability.
func InsufficientStock(requested, available int) *Error {
	return &Error{
		StatusCode: http.StatusConflict,
		Code:       "INSUFFICIENT_STOCK",
		Message:    fmt.Sprintf("cannot take %d units, only %d available", requested, available),
	}
}

// InvalidStateTransition rejects a workflow call made from an illegal state.
func InvalidStateTransition(from, to string) *Error {
	return &Error{
		StatusCode: http.StatusConflict,
		Code:       "INVALID_STATE_TRANSITION",
		Message:    fmt.Sprintf("transfer in status %s cannot move to %s", from, to),
	}
}

// QuantityMismatch rejects receipts where received + damaged exceeds approved.
func QuantityMismatch(received, damaged, approved int) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       "QUANTITY_MISMATCH",
		Message: fmt.Sprintf("received %d + damaged %d exceeds approved quantity %d",
			received, damaged, approved),
	}
}

// PermissionExpired rejects consumption of a grant past its expiry window.
func PermissionExpired() *Error {
	return &Error{
		StatusCode: http.StatusForbidden,
		Code:       "PERMISSION_EXPIRED",
		Message:    "one-time permission has expired",
	}
}

// PermissionAlreadyUsed rejects a second consumption of a single-use grant.
func PermissionAlreadyUsed() *Error {
	return &Error{
		StatusCode: http.StatusForbidden,
		Code:       "PERMISSION_ALREADY_USED",
		Message:    "one-time permission has already been used",
	}
}

// PermissionNotFound rejects consumption of an unknown grant.
func PermissionNotFound() *Error {
	return &Error{
		StatusCode: http.StatusNotFound,
		Code:       "PERMISSION_NOT_FOUND",
		Message:    "one-time permission not found",
	}
}

// TamperedAuditChain reports a hash mismatch in the audit chain. Fatal for
// the affected range; never routed around silently.
func TamperedAuditChain(sequence int64) *Error {
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Code:       "TAMPERED_AUDIT_CHAIN",
		Message:    fmt.Sprintf("audit chain integrity violation at sequence %d", sequence),
	}
}

// NotFound reports a missing entity.
func NotFound(what string) *Error {
	return &Error{
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    what + " not found",
	}
}

// BadRequest reports a malformed request.
func BadRequest(message string) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
	}
}
