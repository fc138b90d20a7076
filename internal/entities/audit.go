package entities

import "time"

type AuditEventType string

const (
	AuditEventCreate AuditEventType = "create"
	AuditEventUpdate AuditEventType = "update"
	AuditEventDelete AuditEventType = "delete"
	AuditEventAuth   AuditEventType = "auth"
	AuditEventSystem AuditEventType = "system"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          string         `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	UserID      string         `gorm:"index;size:36" bson:"user_id,omitempty" json:"user_id,omitempty"`
	EventType   AuditEventType `gorm:"index;size:50" bson:"event_type" json:"event_type"`
	Action      string         `gorm:"size:100" bson:"action" json:"action"`           // e.g., "login", "book_delete"
	Description string         `gorm:"size:500" bson:"description" json:"description"` // Human-readable summary
	EntityType  string         `gorm:"size:50" bson:"entity_type,omitempty" json:"entity_type,omitempty"`
	EntityID    string         `gorm:"index;size:36" bson:"entity_id,omitempty" json:"entity_id,omitempty"`
	IPAddress   string         `gorm:"size:45" bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent   string         `gorm:"size:500" bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Status      AuditStatus    `gorm:"size:20" bson:"status" json:"status"`
	ErrorMsg    string         `gorm:"size:500" bson:"error_msg,omitempty" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" bson:"created_at" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
