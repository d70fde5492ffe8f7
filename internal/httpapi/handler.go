package httpapi

import (
	"encoding/json"
	"errors"
	"expvar"
	"net/http"
	"strconv"
	"strings"

	"cqs/queue-service/internal/models"
	"cqs/queue-service/internal/store"
)

type Handler struct {
	tickets  store.TicketStore
	entities store.EntityStore
}

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type createTicketRequest struct {
	RegionID int64 `json:"region_id"`
	OfficeID int64 `json:"office_id"`
}

type callNextResponse struct {
	Ticket  *models.Ticket `json:"ticket"`
	Message string         `json:"message,omitempty"`
}

func NewHandler(tickets store.TicketStore, entities store.EntityStore) *Handler {
	return &Handler{tickets: tickets, entities: entities}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", expvar.Handler())
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/tickets", h.handleCreateTicket)
	mux.HandleFunc("/api/tickets/", h.handleTicketPath)
	mux.HandleFunc("/api/counters/", h.handleCounterPath)
	mux.HandleFunc("/api/supervisor/offices/", h.handleSupervisorPath)
	h.adminRoutes(mux)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req createTicketRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.RegionID <= 0 || req.OfficeID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "region_id and office_id are required")
		return
	}

	ticket, err := h.tickets.CreateTicket(r.Context(), req.RegionID, req.OfficeID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
}

func (h *Handler) handleTicketPath(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/tickets/")
	switch {
	case len(parts) == 1:
		h.handleGetTicket(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "start-service":
		h.handleStartService(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "complete-service":
		h.handleCompleteService(w, r, parts[0])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleGetTicket(w http.ResponseWriter, r *http.Request, rawID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ticketID, ok := parseID(w, rawID, "ticket_id")
	if !ok {
		return
	}

	ticket, err := h.tickets.GetTicket(r.Context(), ticketID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) handleStartService(w http.ResponseWriter, r *http.Request, rawID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ticketID, ok := parseID(w, rawID, "ticket_id")
	if !ok {
		return
	}

	ticket, err := h.tickets.StartService(r.Context(), ticketID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) handleCompleteService(w http.ResponseWriter, r *http.Request, rawID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ticketID, ok := parseID(w, rawID, "ticket_id")
	if !ok {
		return
	}

	ticket, err := h.tickets.CompleteService(r.Context(), ticketID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) handleCounterPath(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/counters/")
	if len(parts) != 2 || parts[1] != "call-next" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	counterID, ok := parseID(w, parts[0], "counter_id")
	if !ok {
		return
	}

	ticket, err := h.tickets.CallNext(r.Context(), counterID)
	if err != nil {
		if errors.Is(err, store.ErrNoTicket) {
			// An empty queue is a normal outcome, not a failure.
			writeJSON(w, http.StatusOK, callNextResponse{Message: "no waiting tickets available"})
			return
		}
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, callNextResponse{Ticket: &ticket})
}

func (h *Handler) handleSupervisorPath(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/supervisor/offices/")
	if len(parts) != 2 || parts[1] != "status" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	officeID, ok := parseID(w, parts[0], "office_id")
	if !ok {
		return
	}
	h.handleDashboard(w, r, officeID)
}

func splitPath(path, prefix string) []string {
	trimmed := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func parseID(w http.ResponseWriter, raw, field string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", field+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func decodeRequest(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return false
	}
	return true
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, store.ErrRegionNotFound):
		return http.StatusNotFound, "region_not_found", "region not found"
	case errors.Is(err, store.ErrOfficeNotFound):
		return http.StatusNotFound, "office_not_found", "office not found"
	case errors.Is(err, store.ErrCounterNotFound):
		return http.StatusNotFound, "counter_not_found", "counter not found"
	case errors.Is(err, store.ErrOfficerNotFound):
		return http.StatusNotFound, "officer_not_found", "officer not found"
	case errors.Is(err, store.ErrTicketNotFound):
		return http.StatusNotFound, "ticket_not_found", "ticket not found"
	case errors.Is(err, store.ErrRegionMismatch):
		return http.StatusBadRequest, "region_mismatch", "office does not belong to region"
	case errors.Is(err, store.ErrCounterInactive):
		return http.StatusBadRequest, "counter_inactive", "counter is not active"
	case errors.Is(err, store.ErrInvalidState):
		return http.StatusConflict, "invalid_state", "ticket state does not allow this action"
	case errors.Is(err, store.ErrRegionHasOffices):
		return http.StatusConflict, "region_has_offices", "region still has offices"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Error: responseError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
