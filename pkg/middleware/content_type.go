package middleware

import (
	"net/http"
	"strings"

	"parkease/pkg/logger"
)

// ContentTypeValidation rejects mutating requests that do not declare
// a JSON body. Reads pass through untouched.
func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
			default:
				next.ServeHTTP(w, r)
				return
			}

			if mediaType(r.Header.Get("Content-Type")) != "application/json" {
				log.Warn("Rejected unsupported content type",
					"request_id", requestIDFrom(r),
					"content_type", r.Header.Get("Content-Type"),
					"method", r.Method,
					"path", r.URL.Path,
				)
				reject(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// mediaType strips any parameters, e.g. "application/json; charset=utf-8".
func mediaType(header string) string {
	if i := strings.IndexByte(header, ';'); i >= 0 {
		header = header[:i]
	}
	return strings.TrimSpace(header)
}
