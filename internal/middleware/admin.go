package middleware

import (
	"encoding/json"
	"net"
	"net/http"
)

// AdminGuard protects the credit management surface. With a key configured,
// the caller must present it via the X-Admin-Key header or the adminKey query
// parameter. Without a key only loopback callers get through, which keeps
// local development usable and everything else shut.
func AdminGuard(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey != "" {
				presented := r.Header.Get("X-Admin-Key")
				if presented == "" {
					presented = r.URL.Query().Get("adminKey")
				}
				if presented == adminKey {
					next.ServeHTTP(w, r)
					return
				}
			} else if isLoopback(r.RemoteAddr) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "FORBIDDEN"})
		})
	}
}

func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
