package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/empirical"
	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/view"
)

// Options configures a Handler
type Options struct {
	Defaults  view.Defaults
	Empirical empirical.Source // Optional; nil disables empirical adjustment
	Logger    *logrus.Logger
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	defaults  view.Defaults
	empirical empirical.Source
	slips     *view.SlipValidator
	pages     *template.Template
	logger    *logrus.Logger
}

// NewHandler creates a new handler
func NewHandler(opts Options) *Handler {
	return &Handler{
		defaults:  opts.Defaults,
		empirical: opts.Empirical,
		slips:     view.NewSlipValidator(),
		pages:     parsePages(),
		logger:    opts.Logger,
	}
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "stake-calculator",
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
