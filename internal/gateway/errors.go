package gateway

import (
	"errors"
	"fmt"
)

type Category string

const (
	CategoryValidation       Category = "validation_error"
	CategoryUnsupportedMedia Category = "unsupported_media"
	CategoryDecode           Category = "decode_error"
	CategoryEngine           Category = "engine_error"
)

// Error is a categorized pipeline failure. The category is machine
// readable; Detail is the human readable message returned to the caller.
type Error struct {
	Category Category
	Detail   string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationErr(format string, args ...any) *Error {
	return &Error{Category: CategoryValidation, Detail: fmt.Sprintf(format, args...)}
}

func unsupportedMediaErr(format string, args ...any) *Error {
	return &Error{Category: CategoryUnsupportedMedia, Detail: fmt.Sprintf(format, args...)}
}

func decodeErr(detail string, err error) *Error {
	return &Error{Category: CategoryDecode, Detail: detail, Err: err}
}

func engineErr(err error) *Error {
	return &Error{Category: CategoryEngine, Detail: "prediction engine call failed", Err: err}
}

// CategoryOf extracts the pipeline category from err, or "" when err did
// not originate from the gateway.
func CategoryOf(err error) Category {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Category
	}
	return ""
}
