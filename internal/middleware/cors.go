package middleware

import (
	"net/http"
	"strings"
)

// corsAllowedHeaders lists the headers clients may send cross-origin,
// including the signature protocol headers.
var corsAllowedHeaders = strings.Join([]string{
	"Content-Type",
	"X-Client-Id",
	"X-Signature",
	"X-Timestamp",
	"X-Nonce",
}, ", ")

// CORS is a permissive CORS middleware: any origin, the service's methods,
// and the signature headers. Preflight requests are answered directly.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
