package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// AccessLog wraps the whole router so every request, matched or not, gets a
// request id and one access line. Handlers reach the request logger through
// zerolog.Ctx(r.Context()).
func AccessLog(logger zerolog.Logger, next http.Handler) http.Handler {
	h := hlog.AccessHandler(accessLogFn)(next)
	h = hlog.UserAgentHandler("user_agent")(h)
	h = hlog.RemoteAddrHandler("remote_ip")(h)
	h = hlog.RequestIDHandler("request_id", "Request-Id")(h)
	return hlog.NewHandler(logger)(h)
}

func accessLogFn(r *http.Request, status, size int, duration time.Duration) {
	level := zerolog.InfoLevel
	switch {
	case status >= 500:
		level = zerolog.ErrorLevel
	case status >= 400:
		level = zerolog.WarnLevel
	case r.URL.Path == "/health" || r.URL.Path == "/metrics":
		level = zerolog.DebugLevel
	}
	hlog.FromRequest(r).WithLevel(level).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}
