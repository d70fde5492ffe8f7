package httpapi

import (
	"net/http"

	"cqs/queue-service/internal/models"
	"cqs/queue-service/internal/store"
)

const activityFeedSize = 10

type dashboardResponse struct {
	OfficeID              int64                 `json:"office_id"`
	OfficeName            string                `json:"office_name"`
	WaitingCount          int                   `json:"waiting_count"`
	CalledCount           int                   `json:"called_count"`
	ServingCount          int                   `json:"serving_count"`
	ServedCount           int                   `json:"served_count"`
	ActiveCounters        int                   `json:"active_counters"`
	IdleCounters          int                   `json:"idle_counters"`
	AverageServiceSeconds *float64              `json:"average_service_time_seconds"`
	ActivityFeed          []store.ActivityEntry `json:"activity_feed"`
}

// handleDashboard composes the supervisor view from several point
// queries rather than one wide join so each piece stays testable.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request, officeID int64) {
	ctx := r.Context()

	office, err := h.entities.GetOffice(ctx, officeID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	counts, err := h.tickets.StatusCounts(ctx, officeID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	active, err := h.tickets.ActiveCounters(ctx, officeID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	idle, err := h.tickets.IdleCounters(ctx, officeID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	avg, err := h.tickets.AverageServiceSeconds(ctx, officeID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}

	feed, err := h.tickets.RecentTickets(ctx, officeID, activityFeedSize)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	if feed == nil {
		feed = []store.ActivityEntry{}
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		OfficeID:              office.OfficeID,
		OfficeName:            office.Name,
		WaitingCount:          counts[models.StatusWaiting],
		CalledCount:           counts[models.StatusCalled],
		ServingCount:          counts[models.StatusServing],
		ServedCount:           counts[models.StatusServed],
		ActiveCounters:        len(active),
		IdleCounters:          len(idle),
		AverageServiceSeconds: avg,
		ActivityFeed:          feed,
	})
}
