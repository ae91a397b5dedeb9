package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/flood-data-analytics/internal/analytics"
	"github.com/couchcryptid/flood-data-analytics/internal/domain"
	"github.com/couchcryptid/flood-data-analytics/internal/stats"
	"github.com/couchcryptid/flood-data-analytics/internal/store"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Analytics answers the statistics queries served by the API.
type Analytics interface {
	Series() []store.SeriesInfo
	Summarize(ctx context.Context, key domain.SeriesKey, window time.Duration) (analytics.SeriesStats, error)
	Correlate(ctx context.Context, x, y domain.SeriesKey, method stats.Method, window time.Duration) (analytics.CorrelationReport, error)
}

type apiHandler struct {
	svc           Analytics
	defaultWindow time.Duration
	logger        *slog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *apiHandler) handleSeries(w http.ResponseWriter, _ *http.Request) {
	series := h.svc.Series()
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"series": series,
		"count":  len(series),
	})
}

func (h *apiHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	key, err := domain.ParseSeriesKey(chi.URLParam(r, "site") + ":" + chi.URLParam(r, "variable"))
	if err != nil {
		h.badRequest(w, err)
		return
	}
	window, err := h.parseWindow(r)
	if err != nil {
		h.badRequest(w, err)
		return
	}

	result, err := h.svc.Summarize(r.Context(), key, window)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, result)
}

func (h *apiHandler) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("x") == "" || q.Get("y") == "" {
		h.badRequest(w, errors.New("query parameters x and y are required"))
		return
	}
	x, err := domain.ParseSeriesKey(q.Get("x"))
	if err != nil {
		h.badRequest(w, err)
		return
	}
	y, err := domain.ParseSeriesKey(q.Get("y"))
	if err != nil {
		h.badRequest(w, err)
		return
	}
	method, err := stats.ParseMethod(q.Get("method"))
	if err != nil {
		h.badRequest(w, err)
		return
	}
	window, err := h.parseWindow(r)
	if err != nil {
		h.badRequest(w, err)
		return
	}

	report, err := h.svc.Correlate(r.Context(), x, y, method, window)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, report)
}

// parseWindow reads the trailing window from the query. "all" or "0" selects
// every stored reading; an absent value uses the configured default.
func (h *apiHandler) parseWindow(r *http.Request) (time.Duration, error) {
	s := strings.TrimSpace(r.URL.Query().Get("window"))
	switch s {
	case "":
		return h.defaultWindow, nil
	case "all", "0":
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid window %q: want a positive duration such as 24h", s)
	}
	return d, nil
}

func (h *apiHandler) badRequest(w http.ResponseWriter, err error) {
	sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func (h *apiHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("analytics request failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
		)
	}
	sharedobs.WriteJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrSeriesNotFound), errors.Is(err, analytics.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, stats.ErrInsufficientSamples), errors.Is(err, stats.ErrUndefinedCorrelation),
		errors.Is(err, stats.ErrLengthMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
