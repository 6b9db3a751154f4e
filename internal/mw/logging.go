package mw

import (
	"net/http"
	"strings"
	"time"

	"github.com/ecdye/jwt-pizza-service/internal/httpx"
	"github.com/ecdye/jwt-pizza-service/internal/logging"
)

type LogOpts struct {
	SkipPaths     []string
	RedactHeaders []string
}

func Logger(opts LogOpts) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		skip[p] = true
	}
	redact := map[string]bool{"authorization": true}
	for _, h := range opts.RedactHeaders {
		redact[strings.ToLower(h)] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := httpx.NewRecorder(w)
			next.ServeHTTP(rec, r)
			dur := time.Since(start)

			// one-liner summary
			l := logging.Ctx(r.Context())
			l.Info().
				Str("m", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.Status).
				Int64("ms", dur.Milliseconds()).
				Int("bytes", rec.Bytes).
				Msg("req")

			// on error, add a compact block with redacted headers
			if rec.Status >= 400 {
				h := map[string]string{}
				for k, vv := range r.Header {
					if len(vv) == 0 {
						continue
					}
					v := vv[0]
					if redact[strings.ToLower(k)] {
						v = "***redacted***"
					}
					h[k] = v
				}
				l.Error().
					Str("m", r.Method).
					Str("path", r.URL.Path).
					Int("status", rec.Status).
					Interface("headers", h).
					Msg("req_detail")
			}
		})
	}
}
