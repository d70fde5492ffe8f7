package httpapi

import (
	"net/http"
	"strconv"
)

type regionRequest struct {
	Name string `json:"name"`
}

type officeRequest struct {
	RegionID int64  `json:"region_id"`
	Name     string `json:"name"`
}

type counterRequest struct {
	OfficeID int64  `json:"office_id"`
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active"`
}

type officerRequest struct {
	Name      string `json:"name"`
	UserEmail string `json:"user_email"`
	CounterID *int64 `json:"counter_id"`
}

func (h *Handler) adminRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/admin/regions", h.handleRegions)
	mux.HandleFunc("/api/admin/regions/", h.handleRegionByID)
	mux.HandleFunc("/api/admin/offices", h.handleOffices)
	mux.HandleFunc("/api/admin/offices/", h.handleOfficeByID)
	mux.HandleFunc("/api/admin/counters", h.handleCounters)
	mux.HandleFunc("/api/admin/counters/", h.handleCounterByID)
	mux.HandleFunc("/api/admin/officers", h.handleOfficers)
	mux.HandleFunc("/api/admin/officers/", h.handleOfficerByID)
}

func (h *Handler) handleRegions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		regions, err := h.entities.ListRegions(r.Context())
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, regions)
	case http.MethodPost:
		var req regionRequest
		if !decodeRequest(w, r, &req) {
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
			return
		}
		region, err := h.entities.CreateRegion(r.Context(), req.Name)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusCreated, region)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleRegionByID(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/admin/regions/")
	if len(parts) != 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	regionID, ok := parseID(w, parts[0], "region_id")
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req regionRequest
		if !decodeRequest(w, r, &req) {
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
			return
		}
		region, err := h.entities.UpdateRegion(r.Context(), regionID, req.Name)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, region)
	case http.MethodDelete:
		if err := h.entities.DeleteRegion(r.Context(), regionID); err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleOffices(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		regionID, ok := parseFilterID(w, r, "region_id")
		if !ok {
			return
		}
		offices, err := h.entities.ListOffices(r.Context(), regionID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, offices)
	case http.MethodPost:
		var req officeRequest
		if !decodeRequest(w, r, &req) {
			return
		}
		if req.RegionID <= 0 || req.Name == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "region_id and name are required")
			return
		}
		office, err := h.entities.CreateOffice(r.Context(), req.RegionID, req.Name)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusCreated, office)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleOfficeByID(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/admin/offices/")
	if len(parts) != 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	officeID, ok := parseID(w, parts[0], "office_id")
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		office, err := h.entities.GetOffice(r.Context(), officeID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, office)
	case http.MethodPut:
		var req officeRequest
		if !decodeRequest(w, r, &req) {
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
			return
		}
		office, err := h.entities.UpdateOffice(r.Context(), officeID, req.Name)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, office)
	case http.MethodDelete:
		if err := h.entities.DeleteOffice(r.Context(), officeID); err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCounters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		officeID, ok := parseFilterID(w, r, "office_id")
		if !ok {
			return
		}
		counters, err := h.entities.ListCounters(r.Context(), officeID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, counters)
	case http.MethodPost:
		var req counterRequest
		if !decodeRequest(w, r, &req) {
			return
		}
		if req.OfficeID <= 0 || req.Name == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "office_id and name are required")
			return
		}
		counter, err := h.entities.CreateCounter(r.Context(), req.OfficeID, req.Name)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusCreated, counter)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCounterByID(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/admin/counters/")
	if len(parts) != 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	counterID, ok := parseID(w, parts[0], "counter_id")
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		counter, err := h.entities.GetCounter(r.Context(), counterID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, counter)
	case http.MethodPut:
		var req counterRequest
		if !decodeRequest(w, r, &req) {
			return
		}
		if req.Name == "" || req.IsActive == nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "name and is_active are required")
			return
		}
		counter, err := h.entities.UpdateCounter(r.Context(), counterID, req.Name, *req.IsActive)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, counter)
	case http.MethodDelete:
		if err := h.entities.DeleteCounter(r.Context(), counterID); err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleOfficers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		officeID, ok := parseFilterID(w, r, "office_id")
		if !ok {
			return
		}
		officers, err := h.entities.ListOfficers(r.Context(), officeID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, officers)
	case http.MethodPost:
		var req officerRequest
		if !decodeRequest(w, r, &req) {
			return
		}
		if req.Name == "" || req.UserEmail == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "name and user_email are required")
			return
		}
		officer, err := h.entities.CreateOfficer(r.Context(), req.Name, req.UserEmail, req.CounterID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusCreated, officer)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleOfficerByID(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/admin/officers/")
	if len(parts) != 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	officerID, ok := parseID(w, parts[0], "officer_id")
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req officerRequest
		if !decodeRequest(w, r, &req) {
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
			return
		}
		officer, err := h.entities.UpdateOfficer(r.Context(), officerID, req.Name, req.CounterID)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, officer)
	case http.MethodDelete:
		if err := h.entities.DeleteOfficer(r.Context(), officerID); err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// parseFilterID reads an optional query parameter. Zero means no filter.
func parseFilterID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", name+" must be a positive integer")
		return 0, false
	}
	return id, true
}
