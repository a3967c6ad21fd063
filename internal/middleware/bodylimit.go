package middleware

import "net/http"

// BodyLimit caps the request body. MaxBytesReader makes the handler's read
// fail once the cap is crossed, which surfaces as a 400 from the JSON decode.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
