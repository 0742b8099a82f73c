package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// envelope is the body of every response.
type envelope struct {
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

var kindStatus = map[common.Kind]int{
	common.KindUnauthorized:  http.StatusUnauthorized,
	common.KindForbidden:     http.StatusForbidden,
	common.KindBadRequest:    http.StatusBadRequest,
	common.KindUnprocessable: http.StatusUnprocessableEntity,
	common.KindInternal:      http.StatusInternalServerError,
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Status: http.StatusOK, Data: data, Message: "Success"})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := common.AsError(err)

	status, ok := kindStatus[e.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug(r.Context(), "request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "message", e.Message)
	}

	data := e.Data
	if data == nil {
		data = []any{}
	}
	writeJSON(w, status, envelope{Status: status, Data: data, Message: e.Message})
}
