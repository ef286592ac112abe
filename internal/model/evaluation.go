package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Evaluation holds the persisted metrics of one classifier.
// Scores are NULL when the computed value was NaN.
type Evaluation struct {
	ID              uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	ModelID         uuid.UUID `json:"model_id" gorm:"type:char(36);uniqueIndex;not null"`
	Accuracy        *float64  `json:"accuracy"`
	Precision       *float64  `json:"precision"`
	Recall          *float64  `json:"recall"`
	F1Score         *float64  `json:"f1_score"`
	Classes         string    `json:"-" gorm:"type:text;not null"` // JSON array, canonical class order
	ConfusionMatrix string    `json:"-" gorm:"type:text;not null"` // JSON [][]int, rows actual, columns predicted
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (e *Evaluation) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
