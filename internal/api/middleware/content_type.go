package middleware

import (
	"mime"
	"net/http"

	"github.com/milequest/mapservice/internal/api/models"
)

// RequireJSON rejects request bodies that are not declared as JSON. Requests
// without a Content-Type are accepted.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contentType := r.Header.Get("Content-Type"); contentType != "" {
			mediaType, _, err := mime.ParseMediaType(contentType)
			if err != nil || mediaType != "application/json" {
				models.NewUnsupportedMediaType(GetRequestID(r.Context()), "Content-Type must be application/json").
					WithInstance(r.URL.Path).
					Write(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
