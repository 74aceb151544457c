package domain

import (
	"errors"
	"fmt"
)

// Ошибки хранилища ссылок.
var (
	ErrLinkNotFound   = errors.New("link not found")          // ссылка не найдена
	ErrLinkExists     = errors.New("link id already exists")  // идентификатор уже занят
	ErrPatternIsEmpty = errors.New("delete pattern is empty") // пустой шаблон удаления
)

// InvalidURLError определяет ошибку, когда исходная ссылка не является абсолютным URL.
type InvalidURLError struct {
	err error
}

// NewInvalidURLError создает экземпляр ошибки.
func NewInvalidURLError(err error) *InvalidURLError {
	return &InvalidURLError{err: err}
}

// Error возвращает текст ошибки.
func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("Invalid url: %v", e.err)
}

// Unwrap возвращает причину ошибки.
func (e *InvalidURLError) Unwrap() error {
	return e.err
}
