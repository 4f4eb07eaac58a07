package apperrors

import (
	"net/http"
)

/*
Этот файл содержит фабрики и предопределенные переменные
для ошибок домена burn-записей.
*/

// =========================================================================
// Фабричные ФУНКЦИИ (Используются для оборачивания ошибок, напр. из репозитория)
// =========================================================================

// ErrNotFound - фабрика для ошибки "не найдено" (404)
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "burn", "Burn not found", http.StatusNotFound)
}

// ErrConflict - фабрика для конфликтов идентификаторов при создании (409)
func ErrConflict(err error, message string) *AppError {
	return Wrap(err, CodeConflict, "burn", message, http.StatusConflict)
}

// ErrStoreUnavailable - транзиентная недоступность хранилища метаданных или блобов.
// Вызывающий слой ретраит с backoff; после исчерпания попыток отдается 503.
func ErrStoreUnavailable(err error) *AppError {
	return Wrap(err, CodeExternalServiceError, "store", "Storage temporarily unavailable", http.StatusServiceUnavailable)
}

// ErrGone - запись существует, но навсегда недоступна (410).
// reason - причина из models (expired, max-downloads, manual).
func ErrGone(reason string) *AppError {
	message := "This file is no longer available"
	switch reason {
	case "expired":
		message = "This file has expired"
	case "max-downloads":
		message = "Maximum downloads reached"
	case "manual":
		message = "This file has been deleted"
	}
	return New(CodeGone, "burn", message, http.StatusGone).WithDetails(map[string]string{"reason": reason})
}

// ErrQuotaExceeded - запрошенные параметры превышают потолок тарифа (403, как в исходном API)
func ErrQuotaExceeded(message string) *AppError {
	return New(CodeLimitExceeded, "quota", message, http.StatusForbidden)
}

// =========================================================================
// Предопределенные ПЕРЕМЕННЫЕ (Для частых, статичных ошибок)
// =========================================================================

// ErrPasswordRequired - файл защищен паролем, пароль не передан.
var ErrPasswordRequired = New(
	CodeUnauthorized,
	"credential",
	"Password required",
	http.StatusUnauthorized,
)

// ErrPasswordIncorrect - переданный пароль не совпал с хешем.
var ErrPasswordIncorrect = New(
	CodeInvalidCredentials,
	"credential",
	"Incorrect password",
	http.StatusUnauthorized,
)

// ErrNotOwner - операция разрешена только владельцу записи.
var ErrNotOwner = New(
	CodeForbidden,
	"burn",
	"You can only manage your own burns",
	http.StatusForbidden,
)

// ErrShortCodeExhausted - не удалось подобрать свободный короткий код
// за отведенное число попыток. На практике недостижимо, но обрабатывается явно.
var ErrShortCodeExhausted = New(
	CodeConflict,
	"shortlink",
	"Failed to allocate a unique short link",
	http.StatusConflict,
)
