package binder

import "errors"

// Common binding errors
var (
	// ErrBinderNotApplicable signals that a binder does not apply to the
	// incoming request; the handler framework skips it and continues with
	// the remaining binders.
	ErrBinderNotApplicable = errors.New("binder not applicable to this request")

	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrFailedToParseJSON    = errors.New("failed to parse JSON request body")
	ErrInvalidQuery         = errors.New("failed to parse query parameters")
	ErrInvalidForm          = errors.New("failed to parse form data")
	ErrInvalidPath          = errors.New("failed to parse path parameters")
	ErrInvalidFile          = errors.New("failed to parse uploaded file")
)
