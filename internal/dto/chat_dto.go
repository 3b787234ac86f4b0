package dto

import "time"

type MessageRecord struct {
	ID        uint                   `json:"id"`
	SessionID string                 `json:"sessionId"`
	Content   string                 `json:"content"`
	Role      string                 `json:"role"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type SendMessageRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

type SendMessageResponse struct {
	Message  MessageRecord `json:"message"`
	Response MessageRecord `json:"response"`
}

type HandoffRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Reason    string `json:"reason,omitempty"`
}

type HandoffResponse struct {
	Status            string        `json:"status"`
	Message           string        `json:"message"`
	Reason            string        `json:"reason"`
	EstimatedWaitTime string        `json:"estimatedWaitTime"`
	Event             MessageRecord `json:"event"`
}

type ChatHistoryResponse struct {
	SessionID string          `json:"sessionId"`
	Messages  []MessageRecord `json:"messages"`
}

type ClearHistoryResponse struct {
	SessionID string `json:"sessionId"`
	Cleared   bool   `json:"cleared"`
}
