package publishers

import (
	"time"

	"github.com/google/uuid"
)

// Event represents one probe outcome published downstream.
type Event struct {
	ProbeID      string    `json:"probe_id"`
	TargetID     string    `json:"target_id"`
	BaseURL      string    `json:"base_url"`
	AuthData     string    `json:"auth_data"`
	Mode         string    `json:"mode"`
	Succeeded    bool      `json:"succeeded"`
	HTTPStatus   int       `json:"http_status,omitempty"`
	ServerStatus int       `json:"server_status,omitempty"`
	Message      string    `json:"message,omitempty"`
	Error        string    `json:"error,omitempty"`
	ElapsedMs    int64     `json:"elapsed_ms"`
	CheckedAt    time.Time `json:"checked_at"`
}

// NewEvent constructs an Event for the given target with a fresh probe id.
func NewEvent(targetID, baseURL, authData, mode string) Event {
	return Event{
		ProbeID:   uuid.NewString(),
		TargetID:  targetID,
		BaseURL:   baseURL,
		AuthData:  authData,
		Mode:      mode,
		CheckedAt: time.Now().UTC(),
	}
}

// Outcome is a short label used as a message attribute.
func (e Event) Outcome() string {
	if e.Succeeded {
		return "success"
	}
	return "failure"
}

// Attributes are the message attributes attached by queue and topic publishers.
// Empty values are omitted; SQS and SNS reject them.
func (e Event) Attributes() map[string]string {
	attrs := map[string]string{"outcome": e.Outcome()}
	for k, v := range map[string]string{
		"event_id":  e.ProbeID,
		"target_id": e.TargetID,
		"mode":      e.Mode,
	} {
		if v != "" {
			attrs[k] = v
		}
	}
	return attrs
}
