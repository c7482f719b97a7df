package usecase

import (
	"errors"
	"fmt"
)

// 失敗の種類。HTTPステータスへの対応はhandler側。
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindForbidden  ErrorKind = "forbidden"
	KindInternal   ErrorKind = "internal"
)

type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(kind ErrorKind, message string) error {
	return &AppError{
		Kind:    kind,
		Message: message,
	}
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	ok := errors.As(err, &ae)
	return ae, ok
}

// AppError以外はinternal
func KindOf(err error) ErrorKind {
	if ae, ok := AsAppError(err); ok {
		return ae.Kind
	}
	return KindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// インフラ由来のエラー。メッセージは外に出さない
func dbError(err error) error {
	return &AppError{Kind: KindInternal, Message: "db error", Err: err}
}

func validationError(message string) error {
	return NewAppError(KindValidation, message)
}

func notFound(message string) error {
	return NewAppError(KindNotFound, message)
}

func conflict(message string) error {
	return NewAppError(KindConflict, message)
}

func forbidden(message string) error {
	return NewAppError(KindForbidden, message)
}
