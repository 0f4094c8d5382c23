package binder

import (
	"fmt"
	"net/http"
)

// Form creates a form data binder for application/x-www-form-urlencoded
// content.
//
// It supports struct tags for custom field names:
//   - `form:"name"` - binds to form field "name"
//   - `form:"-"` - skips the field
//
// For non-form content types the binder reports ErrBinderNotApplicable so
// that routes accepting both JSON and form submissions can compose binders.
func Form() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if mediaType(r) != "application/x-www-form-urlencoded" {
			return ErrBinderNotApplicable
		}

		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidForm, err)
		}

		return bindToStruct(v, "form", r.PostForm, ErrInvalidForm)
	}
}
