package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FileRecord is the metadata row for one uploaded document. The storage path
// is not persisted separately from the derived URL; blob deletion works off
// the URL and is best-effort only.
type FileRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	Size      int64     `gorm:"not null" json:"size"`
	Type      string    `gorm:"size:100" json:"type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (f *FileRecord) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
