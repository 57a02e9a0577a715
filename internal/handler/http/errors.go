package http

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/marketfresh/internal/apperror"
)

// Codes produced by the HTTP boundary itself.
const (
	CodeInvalidParams = "INVALID_PARAMS"
	CodeInvalidQuery  = "INVALID_QUERY"
	CodeInvalidBody   = "INVALID_BODY"
	CodeNotFound      = "NOT_FOUND"
	CodeInternal      = "INTERNAL_ERROR"
)

var statusByCode = map[apperror.Code]int{
	apperror.CartNotFound:                http.StatusNotFound,
	apperror.CartNotOpen:                 http.StatusConflict,
	apperror.CartEmpty:                   http.StatusConflict,
	apperror.ProductNotFound:             http.StatusNotFound,
	apperror.InsufficientStock:           http.StatusConflict,
	apperror.OrderNotFound:               http.StatusNotFound,
	apperror.OrderNotPayable:             http.StatusConflict,
	apperror.PaymentIntentNotFound:       http.StatusNotFound,
	apperror.PaymentIntentNotConfirmable: http.StatusConflict,
}

func mapErrorToStatusCode(err error) (int, string) {
	code, ok := apperror.CodeOf(err)
	if !ok {
		return http.StatusInternalServerError, CodeInternal
	}
	status, ok := statusByCode[code]
	if !ok {
		return http.StatusInternalServerError, CodeInternal
	}
	return status, code.String()
}

// respondWithServiceError turns a service error into the error envelope. Unexpected errors
// are logged and reported without detail.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := mapErrorToStatusCode(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Request failed with internal error")
		respondWithError(w, status, CodeInternal, "internal server error")
		return
	}

	log.Debug().Err(err).Str("code", code).Str("path", r.URL.Path).Msg("Request rejected")
	respondWithError(w, status, code, err.Error())
}
