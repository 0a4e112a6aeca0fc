// Package server provides shared HTTP middleware for the preview
// server.
package server

import (
	"net/http"
	"strings"
)

// CSP is a Content-Security-Policy for a served page.
type CSP struct {
	DefaultSrc []string
	StyleSrc   []string
	ScriptSrc  []string
	ImgSrc     []string
	ConnectSrc []string
}

// PreviewCSP returns the policy for the preview page: everything is
// same-origin, the page shell carries its style and reload script
// inline, and the reload socket connects back over ws.
func PreviewCSP() CSP {
	return CSP{
		DefaultSrc: []string{"'self'"},
		StyleSrc:   []string{"'unsafe-inline'"},
		ScriptSrc:  []string{"'unsafe-inline'"},
		ImgSrc:     []string{"'self'", "data:"},
		ConnectSrc: []string{"'self'", "ws:", "wss:"},
	}
}

// Header builds the Content-Security-Policy header value.
func (c CSP) Header() string {
	var directives []string
	add := func(name string, srcs []string) {
		if len(srcs) > 0 {
			directives = append(directives, name+" "+strings.Join(srcs, " "))
		}
	}
	add("default-src", c.DefaultSrc)
	add("style-src", c.StyleSrc)
	add("script-src", c.ScriptSrc)
	add("img-src", c.ImgSrc)
	add("connect-src", c.ConnectSrc)
	return strings.Join(directives, "; ")
}

// SecurityHeaders adds the standard hardening headers plus the given
// CSP to every response.
func SecurityHeaders(csp CSP, next http.Handler) http.Handler {
	header := csp.Header()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if header != "" {
			w.Header().Set("Content-Security-Policy", header)
		}
		next.ServeHTTP(w, r)
	})
}
