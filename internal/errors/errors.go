package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for clients.
type Kind string

const (
	KindUnauthenticated   Kind = "UNAUTHENTICATED"
	KindInvalidCredential Kind = "INVALID_CREDENTIAL"
	KindForbidden         Kind = "FORBIDDEN"
	KindInvalidInput      Kind = "INVALID_INPUT"
	KindNotFound          Kind = "NOT_FOUND"
	KindConflict          Kind = "CONFLICT"
	KindQuotaExceeded     Kind = "QUOTA_EXCEEDED"
	KindUnavailable       Kind = "UNAVAILABLE"
	KindInternal          Kind = "INTERNAL_ERROR"
)

// Error is a domain error carrying its kind and a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a domain error that keeps its cause for logging.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

var (
	// ErrMissingToken is returned when no bearer credential accompanies a request.
	ErrMissingToken = New(KindUnauthenticated, "unauthorized access")
	// ErrInvalidToken is returned when a bearer credential fails verification, expired or was revoked.
	ErrInvalidToken = New(KindInvalidCredential, "invalid or expired token")
	// ErrForbidden is returned when the caller's role or ownership does not permit the operation.
	ErrForbidden = New(KindForbidden, "forbidden access")

	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = New(KindNotFound, "user not found")
	// ErrUserAlreadyExists is returned when registering an email that is already taken.
	ErrUserAlreadyExists = New(KindConflict, "user already exists")
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = New(KindInvalidInput, "invalid email or password")
	// ErrNoLocalPassword is returned when a federated-only account tries a password login.
	ErrNoLocalPassword = New(KindInvalidInput, "this account uses social login")
	// ErrUnverifiedIdentity is returned when an unverified social login targets a password or elevated account.
	ErrUnverifiedIdentity = New(KindInvalidInput, "this account requires a verified id token or password login")
	// ErrMissingCredentials is returned when email or password is absent.
	ErrMissingCredentials = New(KindInvalidInput, "email and password are required")
	// ErrInvalidRole is returned for a role outside the closed set.
	ErrInvalidRole = New(KindInvalidInput, "invalid role")
	// ErrUnknownPackage is returned for a package id outside the catalog.
	ErrUnknownPackage = New(KindInvalidInput, "invalid package")

	// ErrContestNotFound is returned when a contest is not found.
	ErrContestNotFound = New(KindNotFound, "contest not found")
	// ErrInvalidContestID is returned when a contest id is not well formed.
	ErrInvalidContestID = New(KindInvalidInput, "invalid contest id")
	// ErrInvalidUserID is returned when a user id is not well formed.
	ErrInvalidUserID = New(KindInvalidInput, "invalid user id")
	// ErrInvalidStatus is returned for a status other than confirmed or rejected.
	ErrInvalidStatus = New(KindInvalidInput, "invalid status")
	// ErrStatusDecided is returned when a contest already left the pending state.
	ErrStatusDecided = New(KindConflict, "contest status already decided")
	// ErrAlreadyRegistered is returned when a participant joins the same contest twice.
	ErrAlreadyRegistered = New(KindConflict, "already registered for this contest")
	// ErrNotParticipant is returned when a non-participant submits a task.
	ErrNotParticipant = New(KindForbidden, "you must register for this contest before submitting")
	// ErrEmptySubmission is returned when the submission payload is empty.
	ErrEmptySubmission = New(KindInvalidInput, "submission is required")
	// ErrWinnerDeclared is returned when a contest already has a winner.
	ErrWinnerDeclared = New(KindConflict, "winner already declared")
	// ErrNoSubmissions is returned when the named winner never submitted to the contest.
	ErrNoSubmissions = New(KindNotFound, "no submissions from this participant")
	// ErrMissingWinner is returned when the winner email is absent.
	ErrMissingWinner = New(KindInvalidInput, "winner email is required")

	// ErrInvalidAmount is returned when a payment amount is not positive.
	ErrInvalidAmount = New(KindInvalidInput, "invalid amount")
	// ErrPaymentUnavailable is returned when no payment processor is configured or it cannot be reached.
	ErrPaymentUnavailable = New(KindUnavailable, "payment processor unavailable")
	// ErrStoreUnavailable is returned when the store cannot be reached.
	ErrStoreUnavailable = New(KindUnavailable, "service unavailable")
)

// QuotaExceeded reports that a creator already owns as many contests as their package allows.
func QuotaExceeded(limit int) *Error {
	return New(KindQuotaExceeded, fmt.Sprintf("contest limit reached: your package allows %d contests", limit))
}

// InvalidInput reports a malformed request field.
func InvalidInput(message string) *Error {
	return New(KindInvalidInput, message)
}

// KindOf returns the kind of err, or KindInternal if err is not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
	}
}

var statusByKind = map[Kind]int{
	KindUnauthenticated:   http.StatusUnauthorized,
	KindInvalidCredential: http.StatusUnauthorized,
	KindForbidden:         http.StatusForbidden,
	KindInvalidInput:      http.StatusBadRequest,
	KindNotFound:          http.StatusNotFound,
	KindConflict:          http.StatusConflict,
	KindQuotaExceeded:     http.StatusForbidden,
	KindUnavailable:       http.StatusServiceUnavailable,
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unrecognized becomes a 500
// with a generic message.
func MapErrorToHTTP(err error) *HTTPError {
	var de *Error
	if !errors.As(err, &de) {
		return NewHTTPError(http.StatusInternalServerError, "internal server error", string(KindInternal))
	}
	status, ok := statusByKind[de.Kind]
	if !ok {
		return NewHTTPError(http.StatusInternalServerError, "internal server error", string(KindInternal))
	}
	return NewHTTPError(status, de.Message, string(de.Kind))
}
