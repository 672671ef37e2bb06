package web

import (
	"net/http"

	"github.com/JonMunkholm/CleanCSV/internal/core"
)

// withClientInfo stores the caller's address and user agent for the run log.
// RemoteAddr has already been resolved by TrustedRealIP.
func withClientInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithClient(r.Context(), core.ClientInfo{
			IPAddress: r.RemoteAddr,
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
