package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Classifier is a trained genre classification model.
type Classifier struct {
	ID              uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	DatasetID       uuid.UUID `json:"dataset_id" gorm:"type:char(36);not null;index"`
	AlgorithmType   string    `json:"algorithm_type" gorm:"size:64;not null"`
	WeightsPath     string    `json:"weights_path" gorm:"size:512"`
	Hyperparameters string    `json:"hyperparameters" gorm:"type:text"` // JSON object
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Relations
	Evaluation *Evaluation `json:"evaluation,omitempty" gorm:"foreignKey:ModelID"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Classifier) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
