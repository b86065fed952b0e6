package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/IscoRuta98/ArdhiHub-server/internal/common"
	"github.com/IscoRuta98/ArdhiHub-server/internal/server/services"
)

type errorResponse struct {
	Error   string `json:"error"`
	Step    string `json:"step,omitempty"`
	AssetID uint64 `json:"asset_id,omitempty"`
}

// writeError translates domain errors into the JSON error envelope. A
// StepError keeps its step name and any already-minted asset id in the
// response, so operators can follow up on partial issuance failures.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var br *badRequestError
	if errors.As(err, &br) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: br.msg})
		return
	}

	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrAlreadyExists),
		errors.Is(err, common.ErrInvalidState),
		errors.Is(err, common.ErrStateConflict):
		status = http.StatusConflict
	case errors.Is(err, common.ErrSubmission):
		status = http.StatusBadGateway
	case errors.Is(err, common.ErrConfirmationTimeout):
		status = http.StatusGatewayTimeout
	}

	resp := errorResponse{Error: err.Error()}

	var stepErr *services.StepError
	if errors.As(err, &stepErr) {
		resp.Step = stepErr.Step
		resp.AssetID = stepErr.AssetID
	}

	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		// Internal details stay out of the response body.
		resp.Error = common.ErrInternal.Error()
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

func badRequest(msg string) error { return &badRequestError{msg: msg} }
