// Package apperr — классификация ошибок приложения и их отображение в HTTP-коды.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindAuthorization
	KindNotFound
	KindTransport
	KindStorage
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	case KindStorage:
		return "storage"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error — ошибка с видом; Msg безопасно показывать клиенту.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error { return newf(KindValidation, format, args...) }
func Unauthenticated(format string, args ...any) error {
	return newf(KindUnauthenticated, format, args...)
}
func Forbidden(format string, args ...any) error { return newf(KindAuthorization, format, args...) }
func NotFound(format string, args ...any) error  { return newf(KindNotFound, format, args...) }
func Conflict(format string, args ...any) error  { return newf(KindConflict, format, args...) }

// Transport оборачивает сбой почты/рендеринга.
func Transport(err error, msg string) error {
	return &Error{Kind: KindTransport, Msg: msg, Err: err}
}

// Storage оборачивает сбой записи/чтения артефактов.
func Storage(err error, msg string) error {
	return &Error{Kind: KindStorage, Msg: msg, Err: err}
}

// KindOf — вид первой *Error в цепочке; KindInternal, если её нет.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is сообщает, что в цепочке есть ошибка вида k.
func Is(err error, k Kind) bool { return err != nil && KindOf(err) == k }

// Message — текст для клиента; внутренние детали не раскрываются.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
