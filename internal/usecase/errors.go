package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// 業務エラーの種類。errors.Is で判定できる。
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart empty")
	ErrInvalidStatus     = errors.New("invalid status")

	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 種類ごとのステータス
func statusOf(kind error) int {
	switch kind {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrInsufficientStock, ErrConflict:
		return http.StatusConflict
	case ErrEmptyCart, ErrInvalidStatus, ErrValidation:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// kind をそのままメッセージにする
func newKindError(kind error) error {
	return &HTTPError{Status: statusOf(kind), Message: kind.Error(), Err: kind}
}

// メッセージだけ差し替える
func newKindErrorf(kind error, format string, args ...interface{}) error {
	return &HTTPError{Status: statusOf(kind), Message: fmt.Sprintf(format, args...), Err: kind}
}

func validationError(message string) error {
	return newKindErrorf(ErrValidation, "%s", message)
}

// DB障害は500。原因は Err に残す。
func dbError(op string, err error) error {
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Message: "db error",
		Err:     fmt.Errorf("%s: %w", op, err),
	}
}

// WithinTx の中で作ったエラーはそのまま返す
func passOrDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	return dbError(op, err)
}
