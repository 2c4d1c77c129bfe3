package errs

import (
	"errors"
	"fmt"
)

var (
	ErrParse               = errors.New("document could not be parsed")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrIndexNotReady       = errors.New("index not ready")
	ErrCorpusIndexMismatch = errors.New("corpus and index are not aligned")
)

// ParseError reports a document whose bytes could not be decoded into pages.
type ParseError struct {
	Filename string
	Page     int // 0 when the failure is not tied to a page
	Err      error
}

func (e *ParseError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("parse %s page %d: %v", e.Filename, e.Page, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrParse) match any ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Invalid wraps ErrInvalidArgument with a formatted reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
