package stats

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"clubpulse/internal/member"
	"clubpulse/internal/storage"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the statistics endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/global", h.handleGlobal)
	r.Get("/dashboard", h.handleDashboard)
	r.Get("/activity", h.handleActivity)
	r.Get("/growth", h.handleGrowth)
	r.Get("/member/{id}", h.handleMember)
	r.Get("/member/{id}/trend", h.handleMemberTrend)
	r.Get("/member/{id}/calendar", h.handleCalendar)
}

func (h *Handler) handleMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid member ID", http.StatusBadRequest)
		return
	}
	rng, err := rangeFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	stats, err := h.service.MemberStats(r.Context(), memberID, rng)
	if err != nil {
		if errors.Is(err, member.ErrNotFound) {
			http.Error(w, "member not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

func (h *Handler) handleGlobal(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	stats, err := h.service.GlobalStats(r.Context(), rng)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

func (h *Handler) handleMemberTrend(w http.ResponseWriter, r *http.Request) {
	memberID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid member ID", http.StatusBadRequest)
		return
	}
	trend, err := h.service.MemberTrend(r.Context(), memberID, intQuery(r, "days", TrendDays))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, trend)
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	memberID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid member ID", http.StatusBadRequest)
		return
	}
	now := time.Now()
	year := intQuery(r, "year", now.Year())
	month := time.Month(intQuery(r, "month", int(now.Month())))
	if month < time.January || month > time.December {
		http.Error(w, "invalid month", http.StatusBadRequest)
		return
	}
	days, err := h.service.Calendar(r.Context(), memberID, year, month)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, days)
}

func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	activities, err := h.service.Recent(r.Context(), intQuery(r, "limit", 20))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, activities)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dashboard)
}

func (h *Handler) handleGrowth(w http.ResponseWriter, r *http.Request) {
	growth, err := h.service.Growth(r.Context(), intQuery(r, "months", 12))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, growth)
}

// rangeFromQuery parses optional from/to bounds in YYYY-MM-DD form. The
// end bound extends to the last instant of its day.
func rangeFromQuery(r *http.Request) (Range, error) {
	var rng Range
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse(storage.DateLayout, from)
		if err != nil {
			return rng, errors.New("invalid from date")
		}
		rng.Start = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse(storage.DateLayout, to)
		if err != nil {
			return rng, errors.New("invalid to date")
		}
		rng.End = t.Add(24*time.Hour - time.Nanosecond)
	}
	return rng, nil
}

func intQuery(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
