package models

import (
	"time"
)

// AttachmentableRecipe is the attachmentable_type used for recipe images
const AttachmentableRecipe = "recipe"

// Attachment is an uploaded file stored on a blob disk
type Attachment struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	UserID       *uint64   `gorm:"index"`
	Name         string    `gorm:"size:255;not null"`
	OriginalName string    `gorm:"size:255;not null"`
	Mime         string    `gorm:"size:255;not null"`
	Extension    string    `gorm:"size:32"`
	Size         int64     `gorm:"not null;default:0"`
	Disk         string    `gorm:"size:32;not null"`
	Path         string    `gorm:"size:255;not null"`
	Hash         string    `gorm:"size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the table name for Attachment
func (Attachment) TableName() string {
	return "attachments"
}

// Key is the object key on the attachment's disk
func (a *Attachment) Key() string {
	if a.Extension == "" {
		return a.Path + a.Name
	}
	return a.Path + a.Name + "." + a.Extension
}

// Attachmentable links an attachment to an owning record, ordered by Sort
type Attachmentable struct {
	ID                 uint64      `gorm:"primaryKey;autoIncrement"`
	AttachmentableType string      `gorm:"size:255;not null;index:idx_attachmentable,priority:1"`
	AttachmentableID   uint64      `gorm:"not null;index:idx_attachmentable,priority:2"`
	AttachmentID       uint64      `gorm:"not null;index"`
	Sort               int         `gorm:"not null;default:0"`
	Attachment         *Attachment `gorm:"constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name for Attachmentable
func (Attachmentable) TableName() string {
	return "attachmentables"
}
