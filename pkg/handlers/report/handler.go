package report

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/sales-atlas/pkg/adapters"
	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/models/store"
	reportsvc "github.com/de-tools/sales-atlas/pkg/services/report"
)

// SnapshotLoader yields the relations a report run computes over.
type SnapshotLoader interface {
	Load(ctx context.Context, profile string) (*store.Snapshot, error)
}

type Handler struct {
	loader  SnapshotLoader
	profile string
}

// NewHandler serves reports computed over snapshots from the given profile.
func NewHandler(loader SnapshotLoader, profile string) *Handler {
	return &Handler{loader: loader, profile: profile}
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	var response []api.ReportSummary
	for _, name := range reportsvc.Names() {
		d, err := reportsvc.Describe(name)
		if err != nil {
			continue
		}
		response = append(response, api.ReportSummary{Name: d.Name, Title: d.Title, Columns: d.Columns})
	}
	writeJSON(r.Context(), w, http.StatusOK, response)
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "report")

	asOf := time.Now().UTC()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeJSON(ctx, w, http.StatusBadRequest, api.Error{Error: "as_of must be formatted as YYYY-MM-DD"})
			return
		}
		asOf = parsed
	}

	if _, err := reportsvc.Describe(name); err != nil {
		writeJSON(ctx, w, http.StatusNotFound, api.Error{Error: err.Error()})
		return
	}

	snap, err := h.loader.Load(ctx, h.profile)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("profile", h.profile).Msg("failed to load snapshot")
		writeJSON(ctx, w, http.StatusInternalServerError, api.Error{Error: "failed to load snapshot"})
		return
	}

	table, err := reportsvc.NewEngine(*snap).Run(name, asOf)
	if err != nil {
		// Describe already passed, so only an unknown report can land here.
		status := http.StatusInternalServerError
		if errors.Is(err, reportsvc.ErrUnknownReport) {
			status = http.StatusNotFound
		}
		writeJSON(ctx, w, status, api.Error{Error: err.Error()})
		return
	}

	writeJSON(ctx, w, http.StatusOK, adapters.MapReportTableDomainToApi(table))
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}
