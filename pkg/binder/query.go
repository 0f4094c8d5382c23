package binder

import (
	"net/http"
)

// Query creates a query parameter binder.
//
// It supports struct tags for custom parameter names:
//   - `query:"name"` - binds to query parameter "name"
//   - `query:"-"` - skips the field
//
// Supported types are the basic scalars, slices of them for multi-value
// parameters (?tags=a&tags=b or ?tags=a,b), and pointers for optional
// fields. The binder always applies; absent parameters leave fields at
// their zero value.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrInvalidQuery)
	}
}
