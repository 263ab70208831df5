package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

type ErrorCode string

const (
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest         ErrorCode = "BAD_REQUEST"
	ErrCodeConflict           ErrorCode = "CONFLICT"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError      ErrorCode = "DATABASE_ERROR"
	ErrCodeIllegalTransition  ErrorCode = "ILLEGAL_TRANSITION"
	ErrCodeCredentialRejected ErrorCode = "CREDENTIAL_REJECTED"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
)

// FieldErrors - ошибки валидации по полям формы (поле -> сообщение).
type FieldErrors map[string]string

// Fields возвращает отсортированный список полей с ошибками.
func (f FieldErrors) Fields() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (f FieldErrors) String() string {
	parts := make([]string, 0, len(f))
	for _, k := range f.Fields() {
		parts = append(parts, k+": "+f[k])
	}
	return strings.Join(parts, "; ")
}

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Fields     FieldErrors
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s [%s]", e.Code, e.Message, e.Fields.String())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation собирает ошибки полей в одну ошибку валидации.
func Validation(fields FieldErrors) *AppError {
	return &AppError{
		Code:       ErrCodeValidation,
		Message:    "проверьте правильность заполнения полей",
		HTTPStatus: codeToHTTPStatus(ErrCodeValidation),
		Fields:     fields,
	}
}

// IllegalTransition описывает недопустимый переход статуса.
// В сообщении указывается действие, которое нужно выполнить сначала.
func IllegalTransition(message string) *AppError {
	return New(ErrCodeIllegalTransition, message)
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeIllegalTransition, ErrCodeCredentialRejected:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func hasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

func IsForbidden(err error) bool {
	return hasCode(err, ErrCodeForbidden)
}

func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

func IsIllegalTransition(err error) bool {
	return hasCode(err, ErrCodeIllegalTransition)
}

func IsCredentialRejected(err error) bool {
	return hasCode(err, ErrCodeCredentialRejected)
}

func IsConflict(err error) bool {
	return hasCode(err, ErrCodeConflict)
}

var (
	ErrProductNotFound     = New(ErrCodeNotFound, "товар не найден")
	ErrFormNotFound        = New(ErrCodeNotFound, "форма не найдена или закрыта")
	ErrUnauthorized        = New(ErrCodeUnauthorized, "требуется авторизация, войдите снова")
	ErrForbidden           = New(ErrCodeForbidden, "недостаточно прав")
	ErrCredentialRejected  = New(ErrCodeCredentialRejected, "неверный или истёкший код")
	ErrIssuanceInProgress  = New(ErrCodeConflict, "подтверждение оплаты уже выполняется")
	ErrPaymentNotConfirmed = New(ErrCodeBadRequest, "оплата не подтверждена, повторите попытку")
	ErrProductStateChanged = New(ErrCodeConflict, "статус товара изменился, обновите страницу и повторите")
	ErrProductPublished    = IllegalTransition("товар опубликован: сначала снимите его с публикации, чтобы удалить")
)
