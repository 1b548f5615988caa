package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
)

func (h *Handlers) handleListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.store.ListServiceRequests(r.Context())
	if err != nil {
		h.logger.Error("List requests failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	if requests == nil {
		requests = []entity.ServiceRequest{}
	}
	writeJSON(w, http.StatusOK, requests)
}

func (h *Handlers) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.store.ServiceRequest(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, output.ErrNotFound) {
		writeError(w, http.StatusNotFound, "service request not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, req)
}

var validRequestStatuses = map[entity.RequestStatus]bool{
	entity.RequestStatusPending:   true,
	entity.RequestStatusActive:    true,
	entity.RequestStatusQuoted:    true,
	entity.RequestStatusCompleted: true,
	entity.RequestStatusCancelled: true,
}

func (h *Handlers) handlePatchRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	status := entity.RequestStatus(body.Status)
	if !validRequestStatuses[status] {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	id := chi.URLParam(r, "id")
	err := h.store.UpdateServiceRequestStatus(r.Context(), id, status, body.Notes)
	if errors.Is(err, output.ErrNotFound) {
		writeError(w, http.StatusNotFound, "service request not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handlers) handleListBusinesses(w http.ResponseWriter, r *http.Request) {
	businesses, err := h.store.BusinessesForRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	if businesses == nil {
		businesses = []entity.DiscoveredBusiness{}
	}
	writeJSON(w, http.StatusOK, businesses)
}

var validOutreachStatuses = map[entity.OutreachStatus]bool{
	entity.OutreachPending: true,
	entity.OutreachSent:    true,
	entity.OutreachReplied: true,
	entity.OutreachFailed:  true,
}

func (h *Handlers) handlePatchBusiness(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OutreachStatus string `json:"outreach_status"`
		OutreachNotes  string `json:"outreach_notes"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	status := entity.OutreachStatus(body.OutreachStatus)
	if !validOutreachStatuses[status] {
		writeError(w, http.StatusBadRequest, "unknown outreach status")
		return
	}

	err := h.store.UpdateBusinessOutreach(r.Context(), chi.URLParam(r, "businessID"), status, body.OutreachNotes, nil)
	if errors.Is(err, output.ErrNotFound) {
		writeError(w, http.StatusNotFound, "business not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// handleTrack is the public tracking page's data source. Keyed by the
// unguessable token, so it exposes only coarse progress.
func (h *Handlers) handleTrack(w http.ResponseWriter, r *http.Request) {
	req, err := h.store.ServiceRequestByToken(r.Context(), chi.URLParam(r, "token"))
	if errors.Is(err, output.ErrNotFound) {
		writeError(w, http.StatusNotFound, "unknown tracking token")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	count, err := h.store.CountBusinesses(r.Context(), req.ID)
	if err != nil {
		h.logger.Warn("Business count unavailable", "request_id", req.ID, "error", err.Error())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"service_type":      req.ServiceType,
		"status":            req.Status,
		"discovery_status":  req.DiscoveryStatus,
		"contractors_found": count,
		"created_at":        req.CreatedAt,
	})
}

func (h *Handlers) handleSMSNotify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RequestID string `json:"request_id"`
		Kind      string `json:"kind"`
		Summary   string `json:"summary"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.RequestID == "" || body.Summary == "" {
		writeError(w, http.StatusBadRequest, "request_id and summary are required")
		return
	}

	req, err := h.store.ServiceRequest(r.Context(), body.RequestID)
	if errors.Is(err, output.ErrNotFound) {
		writeError(w, http.StatusNotFound, "service request not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	if err := h.notifier.Custom(r.Context(), req, body.Summary); err != nil {
		h.logger.Error("SMS notify failed", "request_id", body.RequestID, "kind", body.Kind, "error", err.Error())
		writeError(w, http.StatusBadGateway, "sms delivery failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *Handlers) handleOutreach(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "businessID")
	if err := h.outreach.Send(r.Context(), businessID); err != nil {
		if errors.Is(err, output.ErrNotFound) {
			writeError(w, http.StatusNotFound, "business not found")
			return
		}
		h.logger.Error("Outreach failed", "business_id", businessID, "error", err.Error())
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}
