package handler

import (
	"errors"
	"net/http"

	"konsole/internal/domain"
	"konsole/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var httpErr domain.HTTPError

	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		httputil.RespondError(w, http.StatusUnauthorized, "no backend API key configured")
	case errors.Is(err, domain.ErrFetchInProgress):
		// Another refresh is running; the client retries shortly
		httputil.RespondError(w, http.StatusAccepted, "refresh already in progress")
	case errors.As(err, &httpErr):
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
