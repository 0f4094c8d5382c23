// Package binder provides HTTP request data binding for the handler framework.
//
// Each binder processes a single source of request data, selected by struct
// tag: `json:` for request bodies, `query:` for URL query parameters, `form:`
// for urlencoded form fields, `path:` for router path parameters, and `file:`
// for multipart uploads. Binders are composed per route and applied in order;
// a binder that does not apply to the incoming request (e.g. the JSON binder
// on a GET request) reports ErrBinderNotApplicable and is skipped by the
// framework rather than failing the request.
//
//	r.Put("/api/admin/posts/{id}", handler.Wrap(updatePost,
//		handler.WithBinders[handler.Context, UpdatePostRequest](
//			binder.Path(chi.URLParam),
//			binder.JSON(),
//		),
//	))
package binder
