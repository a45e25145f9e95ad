package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fystack/address-intake/internal/intake"
	"github.com/fystack/address-intake/pkg/common/logger"
)

const maxBodyBytes = 1 << 16 // 64KB, far beyond any address payload

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

type APIErrorResponse struct {
	Status    string    `json:"status"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

type VerifyRequest struct {
	Address string `json:"address"`
}

type VerifyResponse struct {
	OK       bool   `json:"ok"`
	Verified *bool  `json:"verified,omitempty"`
	Inserted *bool  `json:"inserted,omitempty"`
	Error    string `json:"error,omitempty"`
}

type StatsResponse struct {
	AllowlistCount int64     `json:"allowlist_count"`
	ConfirmedCount int64     `json:"confirmed_count"`
	Timestamp      time.Time `json:"timestamp"`
}

type IntakeHTTPHandler struct {
	version string
	service *intake.Service
}

func NewIntakeHTTPHandler(version string, service *intake.Service) *IntakeHTTPHandler {
	return &IntakeHTTPHandler{
		version: version,
		service: service,
	}
}

func (h *IntakeHTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc("/verify", h.HandleVerify)
	mux.HandleFunc("/stats", h.HandleStats)
}

func (h *IntakeHTTPHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *IntakeHTTPHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, VerifyResponse{
			OK:    false,
			Error: "Method not allowed.",
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, VerifyResponse{
			OK:    false,
			Error: "Invalid request body.",
		})
		return
	}

	result, err := h.service.Submit(r.Context(), req.Address)
	switch {
	case errors.Is(err, intake.ErrInvalidFormat):
		writeJSON(w, http.StatusBadRequest, VerifyResponse{
			OK:    false,
			Error: "Invalid wallet address format.",
		})
	case errors.Is(err, intake.ErrNotAllowlisted):
		writeJSON(w, http.StatusBadRequest, VerifyResponse{
			OK:       false,
			Verified: boolPtr(false),
			Error:    "Address is not allowlisted.",
		})
	case err != nil:
		logger.Error("Verify failed", "address", req.Address, "err", err)
		writeJSON(w, http.StatusInternalServerError, VerifyResponse{
			OK:    false,
			Error: "Internal server error.",
		})
	default:
		writeJSON(w, http.StatusOK, VerifyResponse{
			OK:       true,
			Verified: boolPtr(result.Verified),
			Inserted: boolPtr(result.Inserted),
		})
	}
}

func (h *IntakeHTTPHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		logger.Error("Stats failed", "err", err)
		writeErrorJSON(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		AllowlistCount: stats.AllowlistCount,
		ConfirmedCount: stats.ConfirmedCount,
		Timestamp:      time.Now().UTC(),
	})
}

func startHTTPServer(port int, version string, service *intake.Service) *http.Server {
	mux := http.NewServeMux()

	if version == "" {
		version = "1.0.0" // fallback version
	}

	handler := NewIntakeHTTPHandler(version, service)
	handler.Register(mux)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		logger.Info(
			"Intake HTTP server started",
			"port", port,
			"health_endpoint", "/health",
			"verify_endpoint", "/verify",
			"stats_endpoint", "/stats",
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed to start", "error", err)
		}
	}()

	return server
}

func boolPtr(b bool) *bool {
	return &b
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", "status", statusCode, "err", err)
	}
}

func writeErrorJSON(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, APIErrorResponse{
		Status:    "error",
		Error:     message,
		Timestamp: time.Now().UTC(),
	})
}
