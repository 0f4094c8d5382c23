package handler

import "net/http"

// redirectResponse implements Response for HTTP redirects
type redirectResponse struct {
	url    string
	status int
}

func (rr redirectResponse) Render(w http.ResponseWriter, r *http.Request) error {
	http.Redirect(w, r, rr.url, rr.status)
	return nil
}

// RedirectOption configures a redirect response
type RedirectOption func(*redirectResponse)

// WithRedirectStatus sets a custom redirect status code.
func WithRedirectStatus(status int) RedirectOption {
	return func(r *redirectResponse) {
		r.status = status
	}
}

// Redirect creates a redirect response. Defaults to 303 See Other, which is
// the right choice after POST form submissions; use WithRedirectStatus for
// permanent or temporary variants.
func Redirect(url string, opts ...RedirectOption) Response {
	r := &redirectResponse{
		url:    url,
		status: http.StatusSeeOther,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
