package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Details []model.FieldViolation `json:"details,omitempty"`
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return model.NewValidationError("body", "must not exceed %d bytes", maxBodyBytes)
		case errors.Is(err, io.EOF):
			return model.NewValidationError("body", "must not be empty")
		default:
			return model.NewValidationError("body", "is not valid JSON: %v", err)
		}
	}
	if dec.More() {
		return model.NewValidationError("body", "must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var (
		ve *model.ValidationError
		fe *model.FeatureOrderMismatchError
	)

	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: "request validation failed",
			Details: ve.Violations,
		})
	case errors.Is(err, model.ErrAssessmentNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "assessment not found"})
	case errors.As(err, &fe):
		logger.ErrorContext(r.Context(), "feature order mismatch", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "feature_order_mismatch",
			Message: fmt.Sprintf("model input layout differs at position %d", fe.Position),
		})
	case errors.Is(err, model.ErrScoringUnavailable):
		logger.WarnContext(r.Context(), "scoring unavailable", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:   "scoring_unavailable",
			Message: "the scoring model is unavailable, try again later",
		})
	default:
		logger.ErrorContext(r.Context(), "request failed", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal", Message: "internal server error"})
	}
}
