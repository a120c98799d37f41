package services

import "github.com/orlovm/bidmarket/internal/models"

// AllAlertsRead reduces the read flags of a request's alert rows to a single
// boolean: a request counts as read only when every alert for it is read.
// One unread alert keeps the whole request unread.
func AllAlertsRead(alerts []models.Alert) bool {
	if len(alerts) == 0 {
		return true
	}
	for _, alert := range alerts {
		if !alert.IsRead {
			return false
		}
	}
	return true
}

// reduceReadState groups alert rows by request id and applies AllAlertsRead
// to each group.
func reduceReadState(alerts []models.Alert) map[string]bool {
	grouped := make(map[string][]models.Alert)
	for _, alert := range alerts {
		grouped[alert.RequestID] = append(grouped[alert.RequestID], alert)
	}

	out := make(map[string]bool, len(grouped))
	for requestID, rows := range grouped {
		out[requestID] = AllAlertsRead(rows)
	}
	return out
}
