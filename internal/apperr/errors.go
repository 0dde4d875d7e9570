// Package apperr defines the typed error kinds the core raises, each carrying
// the HTTP status it maps to so responders don't re-derive it from scratch.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for status-code mapping and logging.
type Kind int

const (
	KindClientRequest Kind = iota
	KindNotFound
	KindForbidden
	KindRangeNotSatisfiable
	KindRemote
	KindLocalIO
	KindDecoder
)

// Error is the typed application error carried through responders up to the
// request worker, which converts it into an HTTP response via httpresp.
type Error struct {
	Kind        Kind
	Status      int
	Explanation string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Explanation, e.Err)
	}
	return e.Explanation
}

func (e *Error) Unwrap() error { return e.Err }

// ErrUserNotFound and ErrPlaylistNotFound are sentinels a RemoteError may wrap;
// the podcast-XML responder special-cases them to a 404 instead of a 500.
var (
	ErrUserNotFound     = errors.New("remote user not found")
	ErrPlaylistNotFound = errors.New("remote playlist not found")
)

func ClientRequest(explanation string) *Error {
	return &Error{Kind: KindClientRequest, Status: http.StatusBadRequest, Explanation: explanation}
}

func ClientRequestStatus(status int, explanation string) *Error {
	return &Error{Kind: KindClientRequest, Status: status, Explanation: explanation}
}

func NotFound(explanation string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Explanation: explanation}
}

func Forbidden(explanation string) *Error {
	return &Error{Kind: KindForbidden, Status: http.StatusForbidden, Explanation: explanation}
}

func RangeNotSatisfiable(explanation string) *Error {
	return &Error{Kind: KindRangeNotSatisfiable, Status: http.StatusRequestedRangeNotSatisfiable, Explanation: explanation}
}

// Remote wraps a failure talking to the remote API. If err wraps
// ErrUserNotFound or ErrPlaylistNotFound the responder maps it to 404 with
// the explanation text instead of 500.
func Remote(explanation string, err error) *Error {
	status := http.StatusInternalServerError
	if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrPlaylistNotFound) {
		status = http.StatusNotFound
	}
	return &Error{Kind: KindRemote, Status: status, Explanation: explanation, Err: err}
}

func LocalIO(explanation string, err error) *Error {
	return &Error{Kind: KindLocalIO, Status: http.StatusInternalServerError, Explanation: explanation, Err: err}
}

func Decoder(explanation string, err error) *Error {
	return &Error{Kind: KindDecoder, Status: http.StatusInternalServerError, Explanation: explanation, Err: err}
}

// As is a small convenience wrapper around errors.As for *Error, since
// responders frequently need to recover the typed error from a wrapped chain.
func As(err error) (*Error, bool) {
	var ae *Error
	ok := errors.As(err, &ae)
	return ae, ok
}
