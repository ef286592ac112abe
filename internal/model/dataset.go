package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DatasetStatus represents the lifecycle state of a dataset.
type DatasetStatus string

const (
	DatasetStatusValid    DatasetStatus = "valid"
	DatasetStatusArchived DatasetStatus = "archived"
)

// Dataset groups uploaded audio files used to train a classifier.
type Dataset struct {
	ID        uuid.UUID     `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string        `json:"name" gorm:"size:255;not null"`
	Status    DatasetStatus `json:"status" gorm:"type:varchar(20);not null;default:'valid';index"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	// Relations
	Files []AudioFile `json:"files" gorm:"foreignKey:DatasetID"`
}

// BeforeCreate sets UUID before creating the record.
func (d *Dataset) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
