package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется, когда сессия отсутствует или недействительна.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда ресурс принадлежит другому пользователю.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrExpiredToken используется, когда токен сессии истек или отозван.
	ErrExpiredToken = errors.New("token is expired")

	// ErrConflict используется для конфликтов состояния (дубликат имени пользователя, повторный ответ).
	ErrConflict = errors.New("resource state conflict")

	// ErrUpstream используется, когда внешний сервис (Gemini, Resend) вернул ошибку.
	ErrUpstream = errors.New("upstream service error")

	// ErrUnavailable используется, когда функциональность отключена конфигурацией.
	ErrUnavailable = errors.New("service unavailable")
)
