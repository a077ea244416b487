package api

import "fmt"

type AppError struct {
	Code    string        `json:"code"`
	Status  int           `json:"-"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

type ErrorResponse struct {
	Error *AppError `json:"error"`
}

func NewAppError(code string, status int, msg string) *AppError {
	return &AppError{Code: code, Status: status, Message: msg}
}

func UnauthorizedError(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Status: 401, Message: msg}
}

func ForbiddenError(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Status: 403, Message: msg}
}

func NotFoundError(entity string, id any) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Status:  404,
		Message: fmt.Sprintf("%s with id %v not found", entity, id),
	}
}

func ConflictError(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Status: 409, Message: msg}
}

func ValidationError(details []ErrorDetail) *AppError {
	return &AppError{
		Code:    "VALIDATION_FAILED",
		Status:  422,
		Message: "Validation failed",
		Details: details,
	}
}

// Token verification failures. All surface as 401; the codes let clients
// distinguish a recoverable expiry from a terminal failure.

func TokenExpiredError() *AppError {
	return &AppError{Code: "TOKEN_EXPIRED", Status: 401, Message: "Token expired"}
}

func TokenInvalidError() *AppError {
	return &AppError{Code: "TOKEN_INVALID", Status: 401, Message: "Invalid token"}
}

func TokenVerificationFailedError() *AppError {
	return &AppError{Code: "TOKEN_VERIFICATION_FAILED", Status: 401, Message: "Token verification failed"}
}

func RefreshTokenExpiredError() *AppError {
	return &AppError{Code: "REFRESH_TOKEN_EXPIRED", Status: 401, Message: "Refresh token expired"}
}

func RefreshTokenInvalidError() *AppError {
	return &AppError{Code: "REFRESH_TOKEN_INVALID", Status: 401, Message: "Invalid refresh token"}
}

func UserNotFoundError() *AppError {
	return &AppError{Code: "USER_NOT_FOUND", Status: 401, Message: "Unauthorized - User not found"}
}
