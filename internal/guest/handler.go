package guest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"clubpulse/internal/member"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the guest endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleListGuests)
	r.Post("/", h.handleRegisterGuest)
	r.Get("/today-count", h.handleTodayCount)
}

// ChargeRoutes mounts the charge endpoints on r.
func (h *Handler) ChargeRoutes(r chi.Router) {
	r.Get("/", h.handleListCharges)
	r.Post("/{id}/pay", h.handleMarkPaid)
}

func (h *Handler) handleRegisterGuest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID  uuid.UUID `json:"memberId"`
		GuestName string    `json:"guestName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rec, err := h.service.RegisterGuest(r.Context(), req.MemberID, req.GuestName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleTodayCount(w http.ResponseWriter, r *http.Request) {
	memberID, err := uuid.Parse(r.URL.Query().Get("memberId"))
	if err != nil {
		http.Error(w, "invalid member ID", http.StatusBadRequest)
		return
	}
	count, err := h.service.TodayGuestCount(r.Context(), memberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *Handler) handleListGuests(w http.ResponseWriter, r *http.Request) {
	guests, err := h.service.ListGuests(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, guests)
}

func (h *Handler) handleListCharges(w http.ResponseWriter, r *http.Request) {
	charges, err := h.service.ListCharges(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, charges)
}

func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid charge ID", http.StatusBadRequest)
		return
	}
	if err := h.service.MarkPaid(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrGuestNameRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, member.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
