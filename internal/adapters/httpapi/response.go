package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/example/bellhop/internal/core/policy"
	"github.com/example/bellhop/internal/core/request"
	"github.com/example/bellhop/internal/ports/secondary"
)

var errTenantRequired = errors.New("tenantId is required")

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}

// writeServiceError maps service errors onto status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, secondary.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, secondary.ErrVersionConflict),
		errors.Is(err, secondary.ErrStatusConflict),
		errors.Is(err, request.ErrNotOpen),
		errors.Is(err, request.ErrClosed):
		return http.StatusConflict
	case errors.Is(err, policy.ErrUnknownPreset),
		errors.Is(err, policy.ErrUnknownField),
		errors.Is(err, policy.ErrInvalidValue),
		errors.Is(err, policy.ErrUnknownChannel),
		errors.Is(err, errTenantRequired):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
