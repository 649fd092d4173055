package alarm

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oshokin/alarm-clock/internal/audio"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/puzzle"
	"github.com/oshokin/alarm-clock/internal/service/alarms"
	"github.com/oshokin/alarm-clock/internal/service/notification"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidRequest  = "invalid_request"
	CodeInvalidPhase    = "invalid_phase"
	CodePlacementFailed = "placement_failed"
	CodeUnknownSound    = "unknown_sound"
	CodeInternal        = "internal"
)

var errMalformedBody = errors.New("malformed request body")

// writeJSON encodes payload with the given status.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps err onto a status and an error code.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	if status >= http.StatusInternalServerError {
		logger.ErrorKV(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
	}

	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errMalformedBody),
		errors.Is(err, domain.ErrInvalidTime),
		errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, alarms.ErrUnknownSound):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, notification.ErrInvalidPhase):
		return http.StatusConflict, CodeInvalidPhase
	case errors.Is(err, puzzle.ErrPlacementFailed):
		return http.StatusUnprocessableEntity, CodePlacementFailed
	case errors.Is(err, audio.ErrUnknownSound):
		return http.StatusNotFound, CodeUnknownSound
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// decodeJSON reads a JSON body into target, rejecting unknown fields.
func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		return errors.Join(errMalformedBody, err)
	}

	return nil
}
