package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/paperchat/paperchat/internal/adapter/utils"
	"github.com/paperchat/paperchat/internal/config"
	"github.com/paperchat/paperchat/internal/data/store"
	"github.com/paperchat/paperchat/internal/handlers"
)

func injectTrace(re requestResponseStruct) requestResponseStruct {
	req := re.req
	if req == nil {
		//this is a bad request
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
	ctx := context.WithValue(req.Context(), config.TraceIDKey, trace)
	req.Header.Set(`X-Trace-Id`, trace)
	re.req = req.WithContext(ctx)

	return re
}

// authenticate resolves the bearer session token to a user id and stashes it
// in the request context. Anything short of a resolvable token is a 401.
func authenticate(re requestResponseStruct) requestResponseStruct {
	token, ok := bearerToken(re.req.Header.Get("Authorization"))
	if !ok {
		return reject(re)
	}

	userId, err := sessions.Resolve(re.req.Context(), token)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			re.logger.Error("Session lookup failed", "error", err)
		}
		return reject(re)
	}

	ctx := context.WithValue(re.req.Context(), config.UserIDKey, userId)
	re.req = re.req.WithContext(ctx)
	return re
}

func bearerToken(authHeader string) (string, bool) {
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	return token, token != ""
}

func reject(re requestResponseStruct) requestResponseStruct {
	handlers.WriteErrorResponse(re.writer, http.StatusUnauthorized, "", "Unauthorized")
	re.badRequest.isBadRequest = true
	re.badRequest.errorMessage = "invalid session token"
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
			errorMessage: "Rate limit exceeded. Slow down bruh",
		}
		return re
	}
	return re
}

func handleBadRequest(re requestResponseStruct) bool {
	if re.badRequest.isBadRequest {
		re.logger.Warn("Bad request", "httpCode", re.badRequest.httpCode, "errorMessage", re.badRequest.errorMessage, "IP", re.req.RemoteAddr)
		if re.badRequest.httpCode != http.StatusUnauthorized {
			handlers.WriteErrorResponse(re.writer, re.badRequest.httpCode, re.badRequest.id, re.badRequest.errorMessage)
		}
		return false
	}
	return true
}
