package models

import (
	"time"
)

// File represents a single uploaded object and its share gates.
// Password and ExpiresAt gate the direct file link; a bundle carries
// its own copies that gate access via the bundle link.
type File struct {
	ID         uint       `gorm:"column:id;primaryKey" json:"-"`
	ShareID    string     `gorm:"column:share_id;uniqueIndex;size:64;not null" json:"_id"`
	FileName   string     `gorm:"column:file_name;size:512;not null" json:"fileName"`
	FileURL    string     `gorm:"column:file_url;size:1024;not null" json:"fileUrl"`
	ObjectKey  string     `gorm:"column:object_key;size:512;not null" json:"-"`
	FileSize   int64      `gorm:"column:file_size;not null" json:"fileSize"`
	FileType   string     `gorm:"column:file_type;size:255;not null" json:"fileType"`
	UploadedBy uint       `gorm:"column:uploaded_by;index;not null" json:"uploadedBy"`
	Downloads  int64      `gorm:"column:downloads;default:0" json:"downloads"`
	Password   *string    `gorm:"column:password;size:255" json:"-"`
	ExpiresAt  *time.Time `gorm:"column:expires_at" json:"expiresAt"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"createdAt"`
}

func (File) TableName() string {
	return "files"
}

// Protected reports whether a download requires a password
func (f *File) Protected() bool {
	return f.Password != nil
}

// Expired reports whether the direct link is past its window
func (f *File) Expired(now time.Time) bool {
	return f.ExpiresAt != nil && f.ExpiresAt.Before(now)
}

// Bundle groups files uploaded in one batch behind a single share link
type Bundle struct {
	ID        uint       `gorm:"column:id;primaryKey" json:"-"`
	ShareID   string     `gorm:"column:share_id;uniqueIndex;size:64;not null" json:"_id"`
	CreatedBy uint       `gorm:"column:created_by;index;not null" json:"createdBy"`
	ExpiresAt *time.Time `gorm:"column:expires_at" json:"expiresAt"`
	Password  *string    `gorm:"column:password;size:255" json:"-"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"createdAt"`

	Files []File `gorm:"-" json:"files,omitempty"`
}

func (Bundle) TableName() string {
	return "bundles"
}

func (b *Bundle) Protected() bool {
	return b.Password != nil
}

func (b *Bundle) Expired(now time.Time) bool {
	return b.ExpiresAt != nil && b.ExpiresAt.Before(now)
}

// BundleFile preserves submission order of bundle members
type BundleFile struct {
	ID       uint `gorm:"column:id;primaryKey" json:"-"`
	BundleID uint `gorm:"column:bundle_id;uniqueIndex:idx_bundle_position;index;not null" json:"bundleId"`
	FileID   uint `gorm:"column:file_id;index;not null" json:"fileId"`
	Position int  `gorm:"column:position;uniqueIndex:idx_bundle_position;not null" json:"position"`
}

func (BundleFile) TableName() string {
	return "bundle_files"
}
