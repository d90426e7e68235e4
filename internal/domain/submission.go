package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SubmissionStatus string

const (
	SubmissionPending    SubmissionStatus = "pending"
	SubmissionInProgress SubmissionStatus = "in_progress"
	SubmissionCompleted  SubmissionStatus = "completed"
	SubmissionCancelled  SubmissionStatus = "cancelled"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionPending, SubmissionInProgress, SubmissionCompleted, SubmissionCancelled:
		return true
	default:
		return false
	}
}

// FormSubmission is the only entity with a lifecycle. Created on form
// submit, mutated only by admin status transitions, never deleted by the
// application (cascade on user delete only).
type FormSubmission struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      *uuid.UUID       `gorm:"type:uuid;index" json:"user_id,omitempty"`
	User        *User            `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Name        string           `gorm:"column:name;not null" json:"name"`
	Email       string           `gorm:"column:email;not null" json:"email"`
	Topic       string           `gorm:"column:topic;not null" json:"topic"`
	Style       string           `gorm:"column:style" json:"style"`
	Description string           `gorm:"column:description" json:"description"`
	Notes       string           `gorm:"column:notes" json:"notes"`
	Status      SubmissionStatus `gorm:"column:status;type:submission_status;not null;default:'pending'" json:"status"`
	Metadata    datatypes.JSON   `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time        `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"not null;default:now()" json:"updated_at"`
}

func (FormSubmission) TableName() string { return "form_submissions" }

// SubmissionWithEmail is the admin listing row: submission joined with the
// owning user's account email (null for orphaned rows).
type SubmissionWithEmail struct {
	FormSubmission
	UserEmail *string `json:"user_email,omitempty"`
}
