package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/krypton-oss/kryptonsec-api/internal/api"
	"github.com/krypton-oss/kryptonsec-api/internal/auth"
	"github.com/krypton-oss/kryptonsec-api/internal/config"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/appError"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/userModel"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response: %v", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, details string, errMsg string) {
	writeJsonResponse(w, httpCode, api.ErrorResponse{Error: errMsg, Details: details})
}

// respondServiceError translates the failure taxonomy into an HTTP status.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appError.ErrNotFound):
		WriteErrorResponse(w, http.StatusNotFound, "", "Not found")
	case errors.Is(err, appError.ErrForbidden):
		WriteErrorResponse(w, http.StatusForbidden, "", "Forbidden")
	case errors.Is(err, appError.ErrUnverified):
		WriteErrorResponse(w, http.StatusForbidden, "", "Email verification required")
	case errors.Is(err, appError.ErrSubscriptionRequired):
		WriteErrorResponse(w, http.StatusPaymentRequired, "", "Subscription required. Please redeem a voucher.")
	case errors.Is(err, appError.ErrProvider):
		WriteErrorResponse(w, http.StatusBadGateway, "", "Provider error")
	case errors.Is(err, appError.ErrParse), errors.Is(err, appError.ErrDuplicate):
		WriteErrorResponse(w, http.StatusBadRequest, "", err.Error())
	default:
		logRH.Error("Unhandled service error", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Internal server error")
	}
}

// requestClaims pulls the authenticated identity the middleware stored on
// the context. Nil only on routes that skipped authentication.
func requestClaims(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(config.USER_KEY).(*auth.Claims)
	return claims
}

func isPrivileged(claims *auth.Claims) bool {
	return claims != nil && (claims.Role == userModel.RoleAdmin || claims.Role == userModel.RoleEditor)
}

func paginationParams(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

func getTargetDirectory() (string, string) {
	root, err := os.Getwd()
	if err != nil {
		return "", "Storage Error"
	}

	targetDir := filepath.Join(root, "temporary_data")
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return targetDir, ""
}
