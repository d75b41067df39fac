package router

import "net/http"

// StatusCoder overrides the 200 status of a successful response.
type StatusCoder interface {
	StatusCode() int
}

// Messenger sets the message of the default success envelope.
type Messenger interface {
	Message() string
}

// MetaProvider adds a meta object to the default success envelope.
type MetaProvider interface {
	Meta() map[string]any
}

// Enveloper replaces the default success envelope with its own body.
type Enveloper interface {
	Envelope() any
}

// HeaderSetter adds response headers.
type HeaderSetter interface {
	Headers() http.Header
}

// CookieSetter adds response cookies.
type CookieSetter interface {
	Cookies() []*http.Cookie
}

func applyHeaders(w http.ResponseWriter, resp any) {
	if hs, ok := resp.(HeaderSetter); ok {
		for key, values := range hs.Headers() {
			for _, v := range values {
				w.Header().Add(key, v)
			}
		}
	}

	if cs, ok := resp.(CookieSetter); ok {
		for _, c := range cs.Cookies() {
			http.SetCookie(w, c)
		}
	}
}
