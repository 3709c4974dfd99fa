package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthEventType names the credential lifecycle step an event records.
type AuthEventType string

const (
	AuthEventSignup         AuthEventType = "signup"
	AuthEventLogin          AuthEventType = "login"
	AuthEventResetRequested AuthEventType = "reset_requested"
	AuthEventResetCompleted AuthEventType = "reset_completed"
)

// AuthEventOutcome is the result of an auth operation.
type AuthEventOutcome string

const (
	AuthOutcomeSuccess AuthEventOutcome = "success"
	AuthOutcomeFailure AuthEventOutcome = "failure"
)

// AuthEvent is an audit record of an auth attempt.
// All attempts are recorded regardless of success or failure.
type AuthEvent struct {
	ID         uuid.UUID        `json:"id" gorm:"type:char(36);primaryKey"`
	UserID     *uint            `json:"user_id,omitempty" gorm:"index"`
	Identifier string           `json:"identifier" gorm:"size:255;index"`
	Type       AuthEventType    `json:"type" gorm:"type:varchar(32);not null;index"`
	Outcome    AuthEventOutcome `json:"outcome" gorm:"type:varchar(16);not null"`
	Reason     string           `json:"reason,omitempty" gorm:"type:text"`
	CreatedAt  time.Time        `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (e *AuthEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
