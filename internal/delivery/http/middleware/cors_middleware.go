package middleware

import (
	"net/http"
	"strings"

	"medicare-backend/config"
)

// CORSMiddleware answers cross-origin requests for the origins named in the
// configuration. A configured "*" allows any origin.
type CORSMiddleware struct {
	allowAny bool
	origins  map[string]struct{}
}

func NewCORSMiddleware(cfg config.CORSConfig) *CORSMiddleware {
	m := &CORSMiddleware{origins: make(map[string]struct{})}
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			m.allowAny = true
			continue
		}
		if origin != "" {
			m.origins[origin] = struct{}{}
		}
	}
	return m
}

func (m *CORSMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if allowed := m.allowedOrigin(req.Header.Get("Origin")); allowed != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		w.Header().Add("Vary", "Origin")

		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, req)
	})
}

// allowedOrigin returns the Allow-Origin value to emit, or "" when the
// request's origin is not allowed.
func (m *CORSMiddleware) allowedOrigin(origin string) string {
	if m.allowAny {
		return "*"
	}
	if _, ok := m.origins[origin]; ok {
		return origin
	}
	return ""
}
