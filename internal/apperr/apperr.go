package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies failures surfaced to callers of the tracker.
type Kind string

const (
	KindInvalidURL         Kind = "invalid_url"
	KindScrapeFailed       Kind = "scrape_failed"
	KindInvalidObservation Kind = "invalid_observation"
	KindNotFound           Kind = "not_found"
	KindInvalidArgument    Kind = "invalid_argument"
	KindInternal           Kind = "internal"
)

// Error wraps an underlying error with a kind and a caller-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func InvalidURL(err error) *Error {
	return New(KindInvalidURL, "invalid url", err)
}

func ScrapeFailed(err error) *Error {
	return New(KindScrapeFailed, "failed to scrape product", err)
}

func InvalidObservation(err error) *Error {
	return New(KindInvalidObservation, "scraped price is not valid", err)
}

func NotFound(err error) *Error {
	return New(KindNotFound, "product not found", err)
}

func InvalidArgument(err error) *Error {
	return New(KindInvalidArgument, "invalid request", err)
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to the response status used by the HTTP API.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidURL, KindInvalidArgument:
		return http.StatusBadRequest
	case KindScrapeFailed:
		return http.StatusBadGateway
	case KindInvalidObservation:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
