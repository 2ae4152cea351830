package httpkit

import (
	"net/http"
	"time"

	"circlesync/internal/platform/net/middleware"

	"github.com/prometheus/client_golang/prometheus"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	CORS     middleware.CORSOptions
	Slow     time.Duration
	Requests *prometheus.HistogramVec
}

// CommonStack returns a baseline per module middleware slice
// request id and recovery come from the server level Defaults
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.CORS(o.CORS),
		middleware.AccessLog(middleware.AccessLogOptions{Slow: o.Slow, Requests: o.Requests}),
	}
}
