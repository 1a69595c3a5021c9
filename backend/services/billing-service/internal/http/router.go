package httpserver

import "net/http"

// Routes groups HTTP handlers.
type Routes struct {
	SessionCDR http.HandlerFunc
	InlineCDR  http.HandlerFunc
	Invoice    http.HandlerFunc
	Health     http.HandlerFunc
	Metrics    http.Handler
	// Auth guards every billing route. Health and metrics stay public.
	Auth func(http.Handler) http.Handler
}

// NewRouter registers service endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	protect := func(h http.HandlerFunc) http.Handler {
		if routes.Auth == nil {
			return h
		}
		return routes.Auth(h)
	}

	if routes.SessionCDR != nil {
		mux.Handle("/billing/sessions/{id}/cdr", protect(method(http.MethodPost, routes.SessionCDR)))
	}
	if routes.InlineCDR != nil {
		mux.Handle("/billing/cdr", protect(method(http.MethodPost, routes.InlineCDR)))
	}
	if routes.Invoice != nil {
		mux.Handle("/billing/sessions/{id}/invoice", protect(method(http.MethodGet, routes.Invoice)))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	if routes.Metrics != nil {
		mux.Handle("/metrics", method(http.MethodGet, routes.Metrics.ServeHTTP))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
