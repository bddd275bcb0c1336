package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/osse101/EcoRewards_Go/internal/logger"
)

// HeaderUserID carries the authenticated user. Authentication happens upstream.
const HeaderUserID = "X-User-ID"

// maxUserIDLength bounds the X-User-ID header
const maxUserIDLength = 128

// DecodeAndValidateRequest decodes a JSON request body, validates it, and returns appropriate errors.
// It logs the operation and returns a standardized error response to the client.
//
// If this function returns an error, the HTTP response has already been written and the handler should return.
//
// Example usage:
//
//	var req CompleteMissionRequest
//	if err := DecodeAndValidateRequest(r, w, &req, "Complete mission"); err != nil {
//	    return
//	}
func DecodeAndValidateRequest(r *http.Request, w http.ResponseWriter, req interface{}, actionName string) error {
	log := logger.FromContext(r.Context())

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Warn(fmt.Sprintf("Failed to decode %s request", actionName), "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return err
	}

	log.Debug(fmt.Sprintf("%s request decoded", actionName))

	if err := GetValidator().ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  ErrMsgInvalidRequestSummary,
			Fields: FormatValidationError(err),
		})
		return err
	}

	return nil
}

// ValidationErrorResponse defines the response structure for validation errors
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// RequireUserID reads the caller's user id from the X-User-ID header.
// If ok is false, the HTTP response has already been written and the handler should return.
func RequireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get(HeaderUserID)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, ErrMsgMissingUserID)
		return "", false
	}
	if err := GetValidator().ValidateVar(userID, fmt.Sprintf("ref,max=%d", maxUserIDLength)); err != nil {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidInputErr)
		return "", false
	}
	return userID, true
}
