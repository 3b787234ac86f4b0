package mapper

import (
	"encoding/json"

	"customer-service-be/internal/entity"
	"customer-service-be/internal/model"

	"gorm.io/datatypes"
)

type MessageMapper struct{}

func NewMessageMapper() *MessageMapper {
	return &MessageMapper{}
}

func (m *MessageMapper) ToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(msg.Metadata) > 0 {
		_ = json.Unmarshal(msg.Metadata, &metadata)
	}

	return &entity.Message{
		ID:        msg.ID,
		SessionID: msg.SessionID,
		Content:   msg.Content,
		Role:      msg.Role,
		Timestamp: msg.Timestamp,
		Metadata:  metadata,
	}
}

func (m *MessageMapper) ToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}

	var metadata datatypes.JSON
	if len(msg.Metadata) > 0 {
		if raw, err := json.Marshal(msg.Metadata); err == nil {
			metadata = datatypes.JSON(raw)
		}
	}

	return &model.Message{
		ID:        msg.ID,
		SessionID: msg.SessionID,
		Content:   msg.Content,
		Role:      msg.Role,
		Timestamp: msg.Timestamp,
		Metadata:  metadata,
	}
}

func (m *MessageMapper) ToEntities(msgs []*model.Message) []*entity.Message {
	entities := make([]*entity.Message, len(msgs))
	for i, msg := range msgs {
		entities[i] = m.ToEntity(msg)
	}
	return entities
}
