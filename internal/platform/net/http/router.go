package http

import "net/http"

// Handler is a plain net/http handler func
type Handler = func(http.ResponseWriter, *http.Request)

// Router is what modules see of the chi mux
// Route nests under a pattern, Group shares middleware without a pattern
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)
	Delete(path string, h Handler)
	Handle(path string, h http.Handler)

	Use(mw ...func(http.Handler) http.Handler)
	Route(pattern string, fn func(Router))
	Group(fn func(Router))

	// Mux returns the underlying handler for servers and tests
	Mux() http.Handler
}
