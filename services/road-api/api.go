package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// ReadingService je čtecí strana úložiště (implementuje Service).
type ReadingService interface {
	Latest(ctx context.Context) (ReadingDTO, error)
	History(ctx context.Context, durationStr string) ([]ReadingDTO, error)
}

// APIHandler sdružuje metody pro obsluhu HTTP požadavků.
type APIHandler struct {
	svc    ReadingService
	logger *slog.Logger
}

func NewAPIHandler(svc ReadingService, logger *slog.Logger) *APIHandler {
	return &APIHandler{svc: svc, logger: logger}
}

func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/readings/latest", h.handleLatest)
	mux.HandleFunc("GET /api/readings", h.handleHistory)
}

// handleLatest: GET /api/readings/latest
func (h *APIHandler) handleLatest(w http.ResponseWriter, r *http.Request) {
	reading, err := h.svc.Latest(r.Context())
	if errors.Is(err, ErrNoReading) {
		writeJSON(w, http.StatusNotFound, MessageResponse{Message: "no reading yet"})
		return
	}
	if err != nil {
		h.logger.Error("Chyba při čtení posledního měření", "error", err)
		writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// handleHistory: GET /api/readings?range=24h
func (h *APIHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	rangeParam := r.URL.Query().Get("range")
	if rangeParam == "" {
		rangeParam = "24h"
	}

	readings, err := h.svc.History(r.Context(), rangeParam)
	if errors.Is(err, ErrInvalidRange) {
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: err.Error()})
		return
	}
	if err != nil {
		h.logger.Error("Chyba při získávání historie", "range", rangeParam, "error", err)
		writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// CorsMiddleware přidá CORS hlavičky, aby API šlo volat z frontendu na jiné doméně.
func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
