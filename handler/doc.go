// Package handler provides type-safe HTTP request handling for the Harmonia API.
//
// The package centers around generic handler functions that bind HTTP requests
// to Go structs and return typed responses, eliminating manual request parsing
// and response encoding:
//
//	type CreateLeadRequest struct {
//		Email string `json:"email"`
//		Name  string `json:"name"`
//	}
//
//	func createLead(ctx handler.Context, req CreateLeadRequest) handler.Response {
//		lead, err := leadService.Capture(ctx, req.Email, req.Name)
//		if err != nil {
//			return handler.JSONError(err)
//		}
//		return handler.JSON(lead)
//	}
//
//	r.Post("/api/leads", handler.Wrap(createLead,
//		handler.WithBinders[handler.Context, CreateLeadRequest](binder.JSON()),
//	))
//
// # Architecture
//
//  1. HandlerFunc - generic function type accepting typed requests and returning responses
//  2. Response - common interface for all response types (JSON, redirects, SSE)
//  3. Context - enhanced context providing access to request and response writer
//  4. Decorator - middleware-like wrappers for cross-cutting concerns
//  5. ErrorHandler - customizable error response formatting
//
// Every error that reaches the framework boundary is classified (HTTPError,
// ValidationError, fallback 500), logged, and rendered as the uniform JSON
// envelope {data, meta, error}; handlers never leak raw errors to clients.
package handler
