package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"
)

// apiError is the JSON body of every failed API call.
type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidPhone), errors.Is(err, engine.ErrInvalidName):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrNoSelection):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrFetch):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fieldFor names the form field an error belongs to, if any.
func fieldFor(err error) string {
	switch {
	case errors.Is(err, engine.ErrInvalidPhone):
		return config.FieldPhone
	case errors.Is(err, engine.ErrInvalidName):
		return config.FieldName
	default:
		return ""
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlNone)
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp, config.LogKeyComponent, config.CompServer, config.LogKeyError, err)
	}
}

// writeAPIError reports err with the status statusFor picks. Server-side
// failures are not echoed verbatim.
func writeAPIError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch {
	case errors.Is(err, engine.ErrInvalidPhone):
		msg = config.ErrInvalidPhone
	case errors.Is(err, engine.ErrPartialRename):
		msg = config.ErrPartialRename
	case errors.Is(err, engine.ErrMutation):
		msg = config.ErrMutation
	case errors.Is(err, engine.ErrFetch):
		msg = config.ErrFetch
	case status == http.StatusInternalServerError:
		msg = http.StatusText(status)
	}
	writeJSON(w, status, apiError{Error: msg, Field: fieldFor(err)})
}

// writeVCard sends data as a downloadable contacts.vcf.
func writeVCard(w http.ResponseWriter, data []byte) {
	w.Header().Set(config.HeaderContentType, config.MimeTextVCard)
	w.Header().Set(config.HeaderContentDisposition, fmt.Sprintf(config.FormatAttachment, config.ExportFileName))
	w.Header().Set(config.HeaderCacheControl, config.CacheControlNone)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	if _, err := w.Write(data); err != nil {
		slog.Error(config.ErrWriteResp, config.LogKeyComponent, config.CompServer, config.LogKeyError, err)
	}
}

// redirect answers a form POST with 303 See Other.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// writePage sends a rendered HTML page.
func writePage(w http.ResponseWriter, status int, render func(w io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		slog.Error(config.ErrRenderPage, config.LogKeyComponent, config.CompServer, config.LogKeyError, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set(config.HeaderContentType, config.MimeHTML)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlNone)
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error(config.ErrWriteResp, config.LogKeyComponent, config.CompServer, config.LogKeyError, err)
	}
}
