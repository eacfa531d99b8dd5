package services

import (
	"strings"
	"time"

	"github.com/filoshare/backend/internal/models"
	"gorm.io/gorm"
)

// LinkService resolves public share links and enforces their gates
type LinkService struct {
	db *gorm.DB
}

func NewLinkService(db *gorm.DB) *LinkService {
	return &LinkService{db: db}
}

// ResolveFile returns a file's metadata if the direct link is alive.
// ErrExpired only when an expiry is set and strictly in the past.
func (s *LinkService) ResolveFile(shareID string) (*models.File, error) {
	var file models.File
	if err := s.db.Where("share_id = ?", shareID).First(&file).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if file.Expired(time.Now()) {
		return nil, ErrExpired
	}
	return &file, nil
}

// Download gates a file download and returns the object URL. The
// counter moves by exactly one, and only on a fully authorized access.
func (s *LinkService) Download(shareID, password string) (*models.File, error) {
	var file models.File
	if err := s.db.Where("share_id = ?", shareID).First(&file).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if file.Expired(time.Now()) {
		return nil, ErrExpired
	}
	if err := CheckAccess(file.Password, strings.TrimSpace(password)); err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.File{}).
		Where("id = ?", file.ID).
		UpdateColumn("downloads", gorm.Expr("downloads + 1")).Error; err != nil {
		return nil, err
	}
	file.Downloads++

	return &file, nil
}

// ResolveBundle returns a bundle and its members in submission order,
// gated by the bundle's own expiry
func (s *LinkService) ResolveBundle(shareID string) (*models.Bundle, error) {
	var bundle models.Bundle
	if err := s.db.Where("share_id = ?", shareID).First(&bundle).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if bundle.Expired(time.Now()) {
		return nil, ErrExpired
	}

	var members []models.BundleFile
	if err := s.db.Where("bundle_id = ?", bundle.ID).Order("position asc").Find(&members).Error; err != nil {
		return nil, err
	}

	files := make([]models.File, 0, len(members))
	for _, m := range members {
		var f models.File
		if err := s.db.First(&f, m.FileID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return nil, err
		}
		files = append(files, f)
	}
	bundle.Files = files

	return &bundle, nil
}

// ListFilesForUser returns the owner's files, newest first
func (s *LinkService) ListFilesForUser(ownerID uint) ([]models.File, error) {
	var files []models.File
	err := s.db.Where("uploaded_by = ?", ownerID).Order("created_at desc").Find(&files).Error
	return files, err
}
