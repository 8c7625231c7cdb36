package models

import "time"

// StepEvent is the wire form of a pipeline step broadcast to websocket
// subscribers while a query is in flight.
type StepEvent struct {
	SessionID string                 `json:"session_id"`
	Query     string                 `json:"query"`
	Component string                 `json:"component"`
	Action    string                 `json:"action"`
	Step      int                    `json:"step"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}
