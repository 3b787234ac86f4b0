package model

import (
	"time"

	"gorm.io/datatypes"
)

// Message is one row of the relational chat transcript.
type Message struct {
	ID        uint           `gorm:"primaryKey;autoIncrement"`
	SessionID string         `gorm:"type:varchar(255);not null;index:idx_messages_session_ts,priority:1"`
	Content   string         `gorm:"type:text;not null"`
	Role      string         `gorm:"type:varchar(50);not null"`
	Timestamp time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_messages_session_ts,priority:2"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
}

func (Message) TableName() string {
	return "messages"
}
