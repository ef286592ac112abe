package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AudioFile is the metadata of an uploaded track. The bytes live on disk.
type AudioFile struct {
	ID        uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	DatasetID *uuid.UUID `json:"dataset_id,omitempty" gorm:"type:char(36);index"`
	FilePath  string     `json:"file_path" gorm:"size:512;not null"`
	Format    string     `json:"format" gorm:"size:10;not null"`
	SizeBytes int64      `json:"size_bytes"`
	Genre     string     `json:"genre,omitempty" gorm:"size:64"`
	CreatedAt time.Time  `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (f *AudioFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
