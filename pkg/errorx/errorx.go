// Package errorx provides coded errors for the HTTP boundary.
//
// Handlers register Coder implementations at init time and wrap domain
// errors with a code; the response writer resolves the code back to an
// HTTP status and a stable, user-safe message.
package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Coder describes an error code: its integer identity, the HTTP status it
// maps to, the external (user-safe) message, and an optional reference URL.
type Coder interface {
	Code() int
	HTTPStatus() int
	String() string
	Reference() string
}

var (
	codeMu sync.RWMutex
	codes  = map[int]Coder{}
)

// unknownCoder is returned for errors carrying no registered code.
var unknownCoder Coder = defaultCoder{
	code: 1, http: http.StatusInternalServerError, msg: "An internal server error occurred",
}

type defaultCoder struct {
	code int
	http int
	msg  string
	ref  string
}

func (c defaultCoder) Code() int         { return c.code }
func (c defaultCoder) HTTPStatus() int   { return c.http }
func (c defaultCoder) String() string    { return c.msg }
func (c defaultCoder) Reference() string { return c.ref }

// NewCoder builds a Coder from its parts.
func NewCoder(code, httpStatus int, msg string) Coder {
	return defaultCoder{code: code, http: httpStatus, msg: msg}
}

// Register adds a Coder to the registry. Returns an error if the code is
// reserved or already taken.
func Register(coder Coder) error {
	if coder.Code() == 0 || coder.Code() == unknownCoder.Code() {
		return fmt.Errorf("code %d is reserved", coder.Code())
	}
	codeMu.Lock()
	defer codeMu.Unlock()
	if _, ok := codes[coder.Code()]; ok {
		return fmt.Errorf("code %d is already registered", coder.Code())
	}
	codes[coder.Code()] = coder
	return nil
}

// MustRegister is Register but panics on conflict. Intended for init().
func MustRegister(coder Coder) {
	if err := Register(coder); err != nil {
		panic(err)
	}
}

// withCode is an error carrying a registered code and an optional cause.
type withCode struct {
	code  int
	msg   string
	cause error
}

func (w *withCode) Error() string {
	if w.cause != nil {
		return fmt.Sprintf("%s: %v", w.msg, w.cause)
	}
	return w.msg
}

func (w *withCode) Unwrap() error { return w.cause }

// WithCode creates a coded error with a formatted internal message.
func WithCode(code int, format string, args ...interface{}) error {
	return &withCode{code: code, msg: fmt.Sprintf(format, args...)}
}

// WrapC wraps err with a code and a formatted context message.
func WrapC(err error, code int, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &withCode{code: code, msg: fmt.Sprintf(format, args...), cause: err}
}

// ParseCoder extracts the Coder from an error chain. Errors without a
// registered code resolve to the unknown coder (HTTP 500).
func ParseCoder(err error) Coder {
	for err != nil {
		if wc, ok := err.(*withCode); ok {
			codeMu.RLock()
			coder, registered := codes[wc.code]
			codeMu.RUnlock()
			if registered {
				return coder
			}
			return unknownCoder
		}
		err = errors.Unwrap(err)
	}
	return unknownCoder
}

// IsCode reports whether any error in the chain carries the given code.
func IsCode(err error, code int) bool {
	for err != nil {
		if wc, ok := err.(*withCode); ok && wc.code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
