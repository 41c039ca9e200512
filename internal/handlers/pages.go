package handlers

import (
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/metrics"
	"github.com/XavierBriggs/fortuna/services/stake-calculator/internal/view"
)

//go:embed web/templates/*.html web/static/*
var webFS embed.FS

// pageData feeds the calculator form template
type pageData struct {
	Defaults view.Defaults
	BetTypes []string
	Form     view.SlipForm
	Missing  []string
	Invalid  []string
}

func parsePages() *template.Template {
	return template.Must(template.ParseFS(webFS, "web/templates/*.html"))
}

// StaticFiles serves the embedded script and stylesheet
func StaticFiles() http.Handler {
	sub, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

// Index renders the calculator form
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "index.html", pageData{
		Defaults: h.defaults,
		BetTypes: view.BetTypes,
		Form:     view.SlipForm{BetType: view.DefaultBetType},
	})
}

// SubmitBet accepts the calculator form. Nothing is stored; the accepted slip is rendered back.
func (h *Handler) SubmitBet(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := view.SlipFormFromValues(r.PostForm)
	slip, err := h.slips.Validate(form)
	if err != nil {
		var slipErr *view.SlipError
		if !errors.As(err, &slipErr) {
			h.logger.WithError(err).Error("Bet slip validation failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		metrics.RecordBetSlip(false)
		h.logger.WithFields(logrus.Fields{
			"missing": slipErr.Missing,
			"invalid": slipErr.Invalid,
		}).Info("Bet slip rejected")

		h.render(w, http.StatusUnprocessableEntity, "index.html", pageData{
			Defaults: h.defaults,
			BetTypes: view.BetTypes,
			Form:     form,
			Missing:  slipErr.Missing,
			Invalid:  slipErr.Invalid,
		})
		return
	}

	metrics.RecordBetSlip(true)
	h.logger.WithFields(logrus.Fields{
		"slip_id":  slip.ID,
		"name":     slip.Name,
		"odds":     slip.Odds,
		"stake":    slip.Stake,
		"sport":    slip.Sport,
		"bet_type": slip.BetType,
	}).Info("Bet slip accepted")

	h.render(w, http.StatusCreated, "slip.html", slip)
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.pages.ExecuteTemplate(w, name, data); err != nil {
		h.logger.WithError(err).WithField("template", name).Error("Failed to render page")
	}
}
