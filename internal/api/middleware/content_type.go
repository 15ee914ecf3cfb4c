package middleware

import (
	"mime"
	"net/http"

	"github.com/viasegura/viasegura/internal/api/models"
)

// bodyMethods are the methods whose Content-Type is enforced.
var bodyMethods = map[string]bool{
	http.MethodPost:  true,
	http.MethodPut:   true,
	http.MethodPatch: true,
}

// ContentTypeJSON defaults the response Content-Type to application/json.
// Handlers that set their own type, such as the problem+json writer, win.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireJSON rejects body-carrying requests whose declared media type is not
// application/json. Requests without a Content-Type header pass through; the
// handler's JSON decoder is the arbiter for those. Parameters such as charset
// are accepted.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		declared := r.Header.Get("Content-Type")
		if !bodyMethods[r.Method] || declared == "" {
			next.ServeHTTP(w, r)
			return
		}

		mediaType, _, err := mime.ParseMediaType(declared)
		if err != nil || mediaType != "application/json" {
			problem := models.NewUnsupportedMediaType(GetRequestID(r.Context()), "request body must be application/json")
			problem.Instance = r.URL.Path
			problem.Write(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}
