package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// respondWithError sends the error envelope shared by every endpoint.
func respondWithError(w http.ResponseWriter, status int, code, message string) {
	respondWithJSON(w, status, ErrorResponse{Error: code, Message: message})
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"INTERNAL_ERROR","message":"internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// decodeJSON decodes a single JSON object from the body, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// decodeAndValidate writes INVALID_BODY and returns false when the body is malformed or invalid.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, CodeInvalidBody, "invalid request body")
		return false
	}

	if err := v.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   CodeInvalidBody,
				Message: "invalid request body",
				Details: formatValidationErrors(validationErrors),
			})
			return false
		}
		log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
		respondWithError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
		return false
	}

	return true
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		if fe.Param() != "" {
			details[field] = fmt.Sprintf("failed on '%s=%s'", fe.Tag(), fe.Param())
		} else {
			details[field] = fmt.Sprintf("failed on '%s'", fe.Tag())
		}
	}
	return details
}

// uuidParams parses the named URL parameters, writing INVALID_PARAMS when one is not a UUID.
func uuidParams(w http.ResponseWriter, r *http.Request, names ...string) ([]uuid.UUID, bool) {
	ids := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		raw := chi.URLParam(r, name)
		id, err := parseUUID(raw)
		if err != nil {
			log.Warn().Err(err).Str(name, raw).Msg("Failed to parse id parameter from URL")
			respondWithError(w, http.StatusBadRequest, CodeInvalidParams, "invalid path parameters")
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// parseUUID accepts only the canonical 36 character form.
func parseUUID(s string) (uuid.UUID, error) {
	if len(s) != 36 {
		return uuid.Nil, fmt.Errorf("invalid uuid length %d", len(s))
	}
	return uuid.FromString(s)
}
