package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

const (
	detailBadCredentials = "Could not validate credentials"
	detailBadLogin       = "Incorrect email or password"
	detailEmailTaken     = "A user with this email already exists"
	detailTaskNotFound   = "Task not found"
	detailUnavailable    = "Service unavailable"
	detailInternal       = "Internal server error"
	detailBadBody        = "Invalid request body"
)

type detailResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

func writeUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", common.BearerScheme)
	writeDetail(w, http.StatusUnauthorized, detail)
}

// validationDetail strips the sentinel prefix so only field messages remain.
func validationDetail(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, common.ErrorValidation.Error()+": "); i >= 0 {
		return msg[i+len(common.ErrorValidation.Error())+2:]
	}
	return "Validation error"
}

// writeError maps service errors to status codes. Internal causes are logged,
// never sent to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		writeDetail(w, http.StatusNotFound, detailTaskNotFound)
	case errors.Is(err, common.ErrorAlreadyExists):
		writeDetail(w, http.StatusConflict, detailEmailTaken)
	case errors.Is(err, common.ErrorUnauthorized):
		writeUnauthorized(w, detailBadCredentials)
	case errors.Is(err, common.ErrorValidation):
		writeDetail(w, http.StatusUnprocessableEntity, validationDetail(err))
	case errors.Is(err, common.ErrorUnavailable):
		s.logger.Error(r.Context(), "datastore unavailable", "error", err)
		writeDetail(w, http.StatusServiceUnavailable, detailUnavailable)
	default:
		s.logger.Error(r.Context(), "request failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, detailInternal)
	}
}

// decodeJSON reads a JSON body of at most 1 MiB into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, detailBadBody)
		return false
	}
	return true
}
