package domain

import (
	"errors"
	"net/url"
)

var (
	errEmptyURL      = errors.New("empty url")
	errMissingScheme = errors.New("relative URL without a base")
	errMissingHost   = errors.New("empty host")
)

// ValidateURL проверяет, что строка является абсолютным URL со схемой и хостом.
func ValidateURL(raw string) error {
	if raw == "" {
		return NewInvalidURLError(errEmptyURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return NewInvalidURLError(err)
	}

	if u.Scheme == "" {
		return NewInvalidURLError(errMissingScheme)
	}

	if u.Host == "" {
		return NewInvalidURLError(errMissingHost)
	}

	return nil
}
