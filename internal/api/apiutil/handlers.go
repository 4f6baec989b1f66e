package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/codr1/golfleague/internal/api/authz"
	"github.com/codr1/golfleague/internal/apperr"
)

const maxBodyBytes = 1 << 20

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type errorResponse struct {
	Error string `json:"error"`
}

// DecodeJSON reads exactly one JSON value from the body. Malformed input is
// reported as a validation error.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.Validation("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("missing request body")
		}
		return apperr.Wrap(apperr.KindValidation, "invalid JSON body", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return apperr.Validation("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteError maps err to its HTTP status and writes {"error": message}.
// Internal errors are logged and answered with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperr.Error
	var fieldErr FieldError
	if !errors.As(err, &appErr) && errors.As(err, &fieldErr) {
		err = apperr.Wrap(apperr.KindValidation, fieldErr.Error(), err)
	}

	kind := apperr.KindOf(err)
	logger := log.Ctx(r.Context())
	switch kind {
	case apperr.KindInternal, apperr.KindUpstream:
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	default:
		logger.Debug().Err(err).Str("kind", kind.String()).Msg("Request rejected")
	}

	if writeErr := WriteJSON(w, apperr.Status(err), errorResponse{Error: apperr.PublicMessage(err)}); writeErr != nil {
		logger.Error().Err(writeErr).Msg("Failed to write error response")
	}
}

// RequireUser writes a 401 and returns nil when the request carries no user
// session.
func RequireUser(w http.ResponseWriter, r *http.Request) *authz.AuthUser {
	user, err := authz.RequireUser(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Debug().Str("path", r.URL.Path).Msg("User session required")
		WriteError(w, r, apperr.Auth("Unauthorized"))
		return nil
	}
	return user
}
