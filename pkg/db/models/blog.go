package models

import (
	"time"

	"github.com/google/uuid"
)

// BlogEntry is a published post.
type BlogEntry struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Title     string         `gorm:"column:title;not null"`
	Contents  string         `gorm:"column:contents;not null"`
	Author    string         `gorm:"column:author;not null"`
	PostedAt  time.Time      `gorm:"column:posted_at;not null"`
	Responses []BlogResponse `gorm:"foreignKey:BlogEntryID;constraint:OnDelete:CASCADE"`
}

// BlogResponse is a reader reply to an entry.
type BlogResponse struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BlogEntryID uuid.UUID `gorm:"column:blog_entry_id;type:uuid;not null"`
	Author      string    `gorm:"column:author;not null"`
	Contents    string    `gorm:"column:contents;not null"`
	RespondedAt time.Time `gorm:"column:responded_at;not null"`
}
