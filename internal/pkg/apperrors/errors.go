package apperrors

import "errors"

// Error kinds. Every error returned by a service wraps exactly one of these.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrResourceNotFound     = errors.New("resource not found")
	ErrConflict             = errors.New("conflict")
	ErrIncompleteSubmission = errors.New("incomplete submission")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")
)

// Not found errors
var (
	ErrStudentNotFound     = &CustomError{Err: ErrResourceNotFound, Message: "student not found"}
	ErrScholarshipNotFound = &CustomError{Err: ErrResourceNotFound, Message: "scholarship not found"}
	ErrRequirementNotFound = &CustomError{Err: ErrResourceNotFound, Message: "requirement not found"}
	ErrApplicationNotFound = &CustomError{Err: ErrResourceNotFound, Message: "application not found"}
	ErrSubmissionNotFound  = &CustomError{Err: ErrResourceNotFound, Message: "submitted requirement not found"}
	ErrEvaluationNotFound  = &CustomError{Err: ErrResourceNotFound, Message: "evaluation not found"}
	ErrUserNotFound        = &CustomError{Err: ErrResourceNotFound, Message: "user not found"}
)

// Conflict errors
var (
	ErrDuplicateActiveApplication = &CustomError{Err: ErrConflict, Message: "student already has a draft or pending application for this scholarship"}
	ErrUsernameOrEmailTaken       = &CustomError{Err: ErrConflict, Message: "username or email already exists"}
	ErrStudentHasApplications     = &CustomError{Err: ErrConflict, Message: "student has applications and cannot be deleted"}
	ErrScholarshipHasApplications = &CustomError{Err: ErrConflict, Message: "scholarship has applications and cannot be deleted"}
	ErrRequirementInUse           = &CustomError{Err: ErrConflict, Message: "requirement is held by an active application and cannot be deleted"}
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewInvalidInputError creates a new custom error for rejected request data
func NewInvalidInputError(message string) error {
	return &CustomError{
		Err:     ErrInvalidInput,
		Message: message,
	}
}

// NewIncompleteSubmissionError reports every requirement that still blocks submission.
func NewIncompleteSubmissionError(missing []string) error {
	names := make([]string, len(missing))
	copy(names, missing)
	return &CustomError{
		Err:     ErrIncompleteSubmission,
		Message: "application has requirements that are not yet submitted",
		Code:    "APP_INCOMPLETE",
		Details: map[string]interface{}{"missingRequirements": names},
	}
}

// MissingRequirements extracts the requirement names carried by an
// incomplete submission error. It returns nil for any other error.
func MissingRequirements(err error) []string {
	var ce *CustomError
	if !errors.As(err, &ce) || !errors.Is(ce.Err, ErrIncompleteSubmission) {
		return nil
	}
	names, _ := ce.Details["missingRequirements"].([]string)
	return names
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
