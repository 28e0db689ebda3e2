package handler

import "net/http"

// chiRouter allows registering handlers without importing chi in tests.
type chiRouter interface {
	Get(pattern string, handlerFn http.HandlerFunc)
	Post(pattern string, handlerFn http.HandlerFunc)
	Patch(pattern string, handlerFn http.HandlerFunc)
	Delete(pattern string, handlerFn http.HandlerFunc)
}

// wrap applies mw to fn. A nil middleware leaves fn unchanged.
func wrap(fn http.HandlerFunc, mw func(http.Handler) http.Handler) http.HandlerFunc {
	if mw == nil {
		return fn
	}
	return mw(fn).ServeHTTP
}
