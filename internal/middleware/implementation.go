package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/krypton-oss/kryptonsec-api/internal/adapter/utils"
	"github.com/krypton-oss/kryptonsec-api/internal/auth"
	"github.com/krypton-oss/kryptonsec-api/internal/config"
	"github.com/krypton-oss/kryptonsec-api/internal/handlers"
)

func injectTrace(re requestResponseStruct) requestResponseStruct {
	req := re.req
	if req == nil {
		re.badRequest.httpCode = http.StatusBadRequest
		re.badRequest.errorMessage = "request is empty"
		re.badRequest.isBadRequest = true
		return re
	}
	trace := req.Header.Get("X-Trace-Id")
	if trace == "" {
		trace = utils.GetNewUUID()
	}
	re.logger = re.logger.With("traceId", trace)
	ctx := context.WithValue(req.Context(), config.TRACE_ID_KEY, trace)
	req.Header.Set(`X-Trace-Id`, trace)
	re.req = req.WithContext(ctx)

	return re
}

// authenticate validates the bearer JWT and stores its claims on the
// request context for the handlers.
func authenticate(re requestResponseStruct) requestResponseStruct {
	authHeader := re.req.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		re.logger.Warn("Missing bearer token")
		return unauthorized(re)
	}

	claims, err := auth.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		re.logger.Warn("Token rejected", "error", err)
		return unauthorized(re)
	}

	ctx := context.WithValue(re.req.Context(), config.USER_KEY, claims)
	re.req = re.req.WithContext(ctx)
	return re
}

func unauthorized(re requestResponseStruct) requestResponseStruct {
	re.badRequest.isBadRequest = true
	re.badRequest.errorMessage = "Unauthorized"
	re.badRequest.httpCode = http.StatusUnauthorized
	return re
}

func rateLimiter(re requestResponseStruct) requestResponseStruct {
	ip, _, err := net.SplitHostPort(re.req.RemoteAddr)
	if err != nil {
		ip = re.req.RemoteAddr
	}

	if !limiterInstance.GetLimiter(ip).Allow() {
		re.logger.Error("Too many requests", "Rate Limiter exceeded", ip)
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusTooManyRequests,
			errorMessage: "Rate limit exceeded",
		}
		return re
	}
	return re
}

func handleBadRequest(re requestResponseStruct) bool {
	if re.badRequest.isBadRequest {
		re.logger.Warn("Bad request", "httpCode", re.badRequest.httpCode, "errorMessage", re.badRequest.errorMessage, "IP", re.req.RemoteAddr)
		handlers.WriteErrorResponse(re.writer, re.badRequest.httpCode, "", re.badRequest.errorMessage)
		return false
	}
	return true
}
