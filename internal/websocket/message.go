package websocket

import (
	"encoding/json"
	"time"
)

// Message types pushed to dashboard clients
const (
	MessageTypeConnection = "connection"
	MessageTypeHeartbeat  = "heartbeat"
	MessageTypePong       = "pong"

	MessageTypeCategoriesUpdated = "categories_updated"
	MessageTypeModelsSynced      = "models_synced"
	MessageTypeRefreshesSynced   = "refreshes_synced"
	MessageTypeReportsSynced     = "reports_synced"
	MessageTypeScheduleUpdated   = "schedule_updated"
	MessageTypeCapacityIngested  = "capacity_ingested"
	MessageTypeRefreshTriggered  = "refresh_triggered"
	MessageTypeSyncCompleted     = "sync_completed"
)

// Message represents a WebSocket message
type Message struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes, stamping it if unset
func (m Message) ToJSON() []byte {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	data, _ := json.Marshal(m)
	return data
}

// FleetEventMessage wraps a fleet change for broadcast
func FleetEventMessage(eventType string, data map[string]interface{}) Message {
	if data == nil {
		data = map[string]interface{}{}
	}
	return Message{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}
