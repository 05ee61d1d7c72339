package attendance

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"clubpulse/internal/member"
	"clubpulse/internal/qrcode"
)

type Handler struct {
	service Service
	members member.Service
}

func NewHandler(service Service, members member.Service) *Handler {
	return &Handler{service: service, members: members}
}

// Routes mounts the attendance endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/scan", h.handleScan)
	r.Get("/status", h.handleStatus)
	r.Get("/history", h.handleHistory)
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QRData     string   `json:"qrData"`
		MemberCode string   `json:"memberCode"`
		Facility   Facility `json:"facility"`
		Companions []string `json:"companions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	code := req.MemberCode
	if req.QRData != "" {
		parsed, ok := qrcode.ParsePayload(req.QRData)
		if !ok {
			http.Error(w, "unrecognized QR payload", http.StatusBadRequest)
			return
		}
		code = parsed
	}

	m, err := h.members.GetByMembershipNumber(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.RecordScan(r.Context(), m.ID, req.Facility, req.Companions)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	memberID, err := uuid.Parse(r.URL.Query().Get("memberId"))
	if err != nil {
		http.Error(w, "invalid member ID", http.StatusBadRequest)
		return
	}
	status, err := h.service.Status(r.Context(), memberID, Facility(r.URL.Query().Get("facility")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]Status{"status": status})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	memberID, err := uuid.Parse(r.URL.Query().Get("memberId"))
	if err != nil {
		http.Error(w, "invalid member ID", http.StatusBadRequest)
		return
	}
	history, err := h.service.History(r.Context(), memberID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownFacility):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, member.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
