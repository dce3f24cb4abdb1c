// Package delivery exposes the delivery log over HTTP.
package delivery

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/DAN6256/EmailServer/internal/storage"
	"github.com/DAN6256/EmailServer/internal/utils/response"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// GetList handles GET /api/deliveries?limit=N, newest first.
//
// Responses:
//
//	200 OK: [ {delivery}, ... ]
//	400 Bad Request: limit is not a positive integer
//	404 Not Found: the delivery log is disabled
//	500 Internal: database error
func GetList(log storage.DeliveryLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("listing deliveries")

		limit := defaultLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				response.WriteJSON(w, http.StatusBadRequest,
					response.GeneralError(errors.New("invalid limit: must be a positive integer")))
				return
			}
			limit = min(n, maxLimit)
		}

		deliveries, err := log.GetDeliveries(r.Context(), limit)
		if err != nil {
			writeStorageError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, deliveries)
	}
}

// GetByID handles GET /api/deliveries/{id}.
func GetByID(log storage.DeliveryLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a delivery", slog.String("id", id))

		intID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("invalid id: must be an integer")))
			return
		}

		d, err := log.GetDeliveryByID(r.Context(), intID)
		if err != nil {
			writeStorageError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, d)
	}
}

func writeStorageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrDisabled):
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(err))
	default:
		slog.Error("delivery log read failed", slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
	}
}
