package entity

import "time"

type Message struct {
	ID        uint
	SessionID string
	Content   string
	Role      string
	Timestamp time.Time
	Metadata  map[string]interface{}
}
