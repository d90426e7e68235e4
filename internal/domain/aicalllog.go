package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AICallLog records one upstream generation attempt. Written best-effort;
// a failed insert never fails the request it describes.
type AICallLog struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Provider      string         `gorm:"column:provider;not null;index" json:"provider"`
	Operation     string         `gorm:"column:operation;not null;index" json:"operation"`
	Model         string         `gorm:"column:model" json:"model"`
	Status        string         `gorm:"column:status;not null" json:"status"` // ok | error | fallback
	LatencyMS     int64          `gorm:"column:latency_ms" json:"latency_ms"`
	ErrorMessage  string         `gorm:"column:error_message" json:"error_message,omitempty"`
	RequestMeta   datatypes.JSON `gorm:"column:request_meta;type:jsonb" json:"request_meta,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (AICallLog) TableName() string { return "ai_call_logs" }
