package serverutils

import "github.com/gofiber/fiber/v2"

// AppError is the typed error every service returns for caller-visible
// failures. Controllers pass it through; ErrorHandlerMiddleware maps it to
// the HTTP envelope.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Error codes, one per taxonomy branch.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeNoCards      = "NO_CARDS_AVAILABLE"
	CodeExpired      = "SESSION_EXPIRED"
	CodeInvalid      = "INVALID_REQUEST"
)

func NewNotFoundError(message string) *AppError {
	return &AppError{Status: fiber.StatusNotFound, Code: CodeNotFound, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Status: fiber.StatusUnauthorized, Code: CodeUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Status: fiber.StatusForbidden, Code: CodeForbidden, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Status: fiber.StatusBadRequest, Code: CodeConflict, Message: message}
}

// NewNoCardsError marks scope exhaustion: the scope holds zero cards at all.
// Zero *due* cards is not an error, it degrades to practice cards instead.
func NewNoCardsError(message string) *AppError {
	return &AppError{Status: fiber.StatusBadRequest, Code: CodeNoCards, Message: message}
}

func NewExpiredError(message string) *AppError {
	return &AppError{Status: fiber.StatusBadRequest, Code: CodeExpired, Message: message}
}

func NewInvalidError(message string) *AppError {
	return &AppError{Status: fiber.StatusBadRequest, Code: CodeInvalid, Message: message}
}
