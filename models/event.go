package models

import "encoding/json"

// Event is a structured log entry emitted while a receipt executed.
type Event struct {
	Standard string          `json:"standard,omitempty"`
	Version  string          `json:"version,omitempty"`
	Name     string          `json:"event"`
	Data     json.RawMessage `json:"data,omitempty"`
}
