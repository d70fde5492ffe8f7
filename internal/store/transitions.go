package store

import "cqs/queue-service/internal/models"

var transitionMap = map[string][]models.Status{
	"call_next":        {models.StatusWaiting},
	"start_service":    {models.StatusCalled},
	"complete_service": {models.StatusServing},
}

// ValidTransition reports whether an action is allowed from the given status.
// SERVED is terminal: no action lists it as a starting state.
func ValidTransition(action string, fromStatus models.Status) bool {
	allowed, ok := transitionMap[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == fromStatus {
			return true
		}
	}
	return false
}
