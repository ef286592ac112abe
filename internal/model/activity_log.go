package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity actions recorded in the audit trail.
const (
	ActionLogin           = "LOGIN"
	ActionRegistration    = "REGISTRATION"
	ActionAccountLocked   = "ACCOUNT_LOCKED"
	ActionRoleChanged     = "ROLE_CHANGED"
	ActionPasswordReset   = "PASSWORD_RESET"
	ActionBackupTriggered = "BACKUP_TRIGGERED"
	ActionModelTrained    = "MODEL_TRAINED"
	ActionModelEvaluated  = "MODEL_EVALUATED"
)

// ActivityLog is an append-only audit entry.
// A nil AccountID marks an action initiated by the system itself.
type ActivityLog struct {
	ID        uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	AccountID *uuid.UUID `json:"account_id" gorm:"type:char(36);index"`
	Action    string     `json:"action" gorm:"size:64;not null;index"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (l *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
