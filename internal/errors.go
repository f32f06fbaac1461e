package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeLocked       ErrorType = "LOCKED"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeUnauthenticated    ErrorCode = "UNAUTHENTICATED"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeWrongPrincipalType ErrorCode = "WRONG_PRINCIPAL_TYPE"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeAccountLocked      ErrorCode = "ACCOUNT_LOCKED"
	ErrCodeAccountInactive    ErrorCode = "ACCOUNT_INACTIVE"
	ErrCodeTenantDisabled     ErrorCode = "TENANT_DISABLED"

	ErrCodePermissionDenied    ErrorCode = "PERMISSION_DENIED"
	ErrCodeModuleNotEntitled   ErrorCode = "MODULE_NOT_ENTITLED"
	ErrCodeSubscriptionExpired ErrorCode = "SUBSCRIPTION_EXPIRED"

	ErrCodePlanNotFound   ErrorCode = "PLAN_NOT_FOUND"
	ErrCodeInvalidPlan    ErrorCode = "INVALID_PLAN"
	ErrCodePlanExists     ErrorCode = "PLAN_ALREADY_EXISTS"
	ErrCodeModuleNotFound ErrorCode = "MODULE_NOT_FOUND"
	ErrCodeTenantNotFound ErrorCode = "TENANT_NOT_FOUND"
	ErrCodeRoleNotFound   ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeUserNotFound   ErrorCode = "USER_NOT_FOUND"
	ErrCodeEmailTaken     ErrorCode = "EMAIL_ALREADY_REGISTERED"
)

// AppError is the single error shape crossing package boundaries. The HTTP
// layer maps it to a status code; services attach causes for logging without
// leaking them to clients.
type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewLockedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeLocked,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusLocked,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	// Invalid credentials deliberately never says whether the email or the
	// password was wrong.
	ErrUnauthenticated    = NewUnauthorizedError("Missing or invalid token", ErrCodeUnauthenticated)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrAccountLocked      = NewLockedError("Account is temporarily locked. Try again later.", ErrCodeAccountLocked)

	ErrWrongPrincipalType = NewForbiddenError("Invalid access type for this resource", ErrCodeWrongPrincipalType)
	ErrAccountInactive    = NewForbiddenError("User account is inactive", ErrCodeAccountInactive)
	ErrTenantDisabled     = NewForbiddenError("Tenant is deactivated", ErrCodeTenantDisabled)

	ErrPermissionDenied    = NewForbiddenError("Permission denied", ErrCodePermissionDenied)
	ErrModuleNotEntitled   = NewForbiddenError("Module is not available in your plan", ErrCodeModuleNotEntitled)
	ErrSubscriptionExpired = NewForbiddenError("Your subscription has expired. Please renew to continue.", ErrCodeSubscriptionExpired)

	ErrPlanNotFound   = NewNotFoundError("Plan not found", ErrCodePlanNotFound)
	ErrInvalidPlan    = NewValidationError("Invalid or inactive plan", ErrCodeInvalidPlan)
	ErrModuleNotFound = NewNotFoundError("Module not found", ErrCodeModuleNotFound)
	ErrTenantNotFound = NewNotFoundError("Tenant not found", ErrCodeTenantNotFound)
	ErrRoleNotFound   = NewNotFoundError("Role not found", ErrCodeRoleNotFound)
	ErrUserNotFound   = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrEmailTaken     = NewConflictError("Email already registered", ErrCodeEmailTaken)
)

// ValidationError is one field-level failure inside a validation response.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return NewValidationError(message, code).WithDetails(ValidationErrors{
		Errors: []ValidationError{{Field: field, Message: message, Code: string(code)}},
	})
}

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
