package middleware

import (
	"net/http"
	"strconv"

	"github.com/paperchat/paperchat/internal/data/store"
	"github.com/paperchat/paperchat/internal/handlers"
	"github.com/paperchat/paperchat/internal/metrics"
	"github.com/paperchat/paperchat/pkg/logx"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logx.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
	id           string
}

var sessions store.SessionStore

var (
	RegisterFileHandler = Wrap(handlers.RegisterFileHandler)
	ListFilesHandler    = Wrap(handlers.ListFilesHandler)
	GetFileHandler      = Wrap(handlers.GetFileHandler)
	DeleteFileHandler   = Wrap(handlers.DeleteFileHandler)
	GetStatusHandler    = Wrap(handlers.GetStatusHandler)
	GetMessagesHandler  = Wrap(handlers.GetMessagesHandler)
	SendMessageHandler  = Wrap(handlers.SendMessageHandler)
	HealthHandler       = WrapPublic(handlers.GetHandler)
)

// InitAuth hands the middleware chain the session store that resolves bearer
// tokens. Must run before the router is wired.
func InitAuth(s store.SessionStore) {
	sessions = s
}

// Wrap runs the shared chain (trace id, rate limit, session auth) and records
// request metrics. Handlers behind it can rely on trace and user ids being in
// the context.
func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

// WrapPublic is the chain without auth, for probes and registration-free
// surfaces that still want tracing and metrics.
func WrapPublic(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200}
		re := injectTrace(requestResponseStruct{req: r, writer: rec, logger: logx.NewLogger("middleware")})
		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc()
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logx.NewLogger("middleware")
	re.logger.Debug("New request received")
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re = rateLimiter(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re = authenticate(re)
	return re
}
