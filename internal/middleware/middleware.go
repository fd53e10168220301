package middleware

import (
	"net/http"
	"strconv"

	"github.com/krypton-oss/kryptonsec-api/internal/handlers"
	"github.com/krypton-oss/kryptonsec-api/internal/metrics"
	"github.com/krypton-oss/kryptonsec-api/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

// public surface
var HealthHandler = WrapPublic(handlers.GetHandler)
var RegisterHandler = WrapPublic(handlers.RegisterHandler)
var LoginHandler = WrapPublic(handlers.LoginHandler)
var ListModelsHandler = WrapPublic(handlers.ListModelsHandler)

// authenticated surface
var ProfileHandler = Wrap(handlers.ProfileHandler)
var ChatHandler = Wrap(handlers.ChatHandler)
var ListChatSessionsHandler = Wrap(handlers.ListChatSessionsHandler)
var GetChatSessionHandler = Wrap(handlers.GetChatSessionHandler)
var DeleteChatSessionHandler = Wrap(handlers.DeleteChatSessionHandler)
var AddDocumentHandler = Wrap(handlers.AddDocumentHandler)
var ListDocumentsHandler = Wrap(handlers.ListDocumentsHandler)
var UpdateDocumentHandler = Wrap(handlers.UpdateDocumentHandler)
var DeleteDocumentHandler = Wrap(handlers.DeleteDocumentHandler)
var SearchDocumentsHandler = Wrap(handlers.SearchDocumentsHandler)
var UploadFileHandler = Wrap(handlers.UploadFileHandler)
var UploadStatusHandler = Wrap(handlers.UploadStatusHandler)

// Wrap runs the full chain: trace injection, rate limiting and JWT
// authentication, with HTTP metrics around the handler.
func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return wrapChain(next, true)
}

// WrapPublic skips authentication but keeps tracing and rate limiting.
func WrapPublic(next http.HandlerFunc) http.HandlerFunc {
	return wrapChain(next, false)
}

func wrapChain(next http.HandlerFunc, authed bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec}, authed)

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(re.badRequest.httpCode)).Inc()
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct, authed bool) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")

	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re = rateLimiter(re)
	if re.badRequest.isBadRequest {
		return re
	}
	if authed {
		re = authenticate(re)
	}
	return re
}
