package dto

import "time"

// HandoffNotification is pushed to connected human agents.
type HandoffNotification struct {
	SessionID         string          `json:"sessionId"`
	Reason            string          `json:"reason"`
	EstimatedWaitTime string          `json:"estimatedWaitTime"`
	Status            string          `json:"status"`
	OccurredAt        time.Time       `json:"occurredAt"`
	Transcript        []MessageRecord `json:"transcript,omitempty"`
}
