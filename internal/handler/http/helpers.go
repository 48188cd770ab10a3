package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/auth"
	"github.com/cmlabs-hris/leave-ledger/internal/handler/http/middleware"
	"github.com/cmlabs-hris/leave-ledger/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// actorFrom returns the authenticated caller, writing 401 when absent.
func actorFrom(w http.ResponseWriter, r *http.Request) (auth.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.HandleError(w, auth.ErrInvalidToken)
	}
	return actor, ok
}

// pathID reads a UUID path parameter. Anything else cannot name a stored
// record, so notFound is written instead.
func pathID(w http.ResponseWriter, r *http.Request, name string, notFound error) (string, bool) {
	id := chi.URLParam(r, name)
	if !validator.IsValidUUID(id) {
		response.HandleError(w, notFound)
		return "", false
	}
	return id, true
}

// decodeJSON decodes the request body into v. An empty body is accepted
// when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, allowEmpty bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		slog.DebugContext(r.Context(), "request decode error", slog.String("path", r.URL.Path), slog.Any("error", err))
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getBoolQueryParam gets a bool query parameter with a default value
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

// yearParam reads ?year=, defaulting to the current year. It writes 400 on
// malformed input.
func yearParam(w http.ResponseWriter, r *http.Request, now time.Time) (int, bool) {
	val := r.URL.Query().Get("year")
	if val == "" {
		return now.Year(), true
	}
	year, err := strconv.Atoi(val)
	if err != nil || year < 2000 || year > 2100 {
		response.BadRequest(w, "year must be between 2000 and 2100", nil)
		return 0, false
	}
	return year, true
}
