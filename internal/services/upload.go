package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/filoshare/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ObjectStore is the external storage provider seen by the pipeline.
// raw forces a byte-identical upload; the store applies irreversible
// media transformations otherwise, which corrupts non-media documents.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string, raw bool) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// IncomingFile is one file of an upload batch
type IncomingFile struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// UploadService runs the quota-gated upload pipeline
type UploadService struct {
	db    *gorm.DB
	store ObjectStore
	quota *QuotaService
}

func NewUploadService(db *gorm.DB, store ObjectStore, quota *QuotaService) *UploadService {
	return &UploadService{db: db, store: store, quota: quota}
}

// expiryFrom computes the shared expiry: now + hours, only for positive hours
func expiryFrom(expiryHours int) *time.Time {
	if expiryHours <= 0 {
		return nil
	}
	t := time.Now().Add(time.Duration(expiryHours) * time.Hour)
	return &t
}

func objectKey() string {
	return "filo/" + uuid.NewString()
}

// UploadBundle uploads a batch of files as one bundle. The whole batch
// is staged: quota is reserved up front, every file is transferred, and
// records are only written once all transfers succeeded. Any failure
// deletes the objects already stored and releases the reservation, so
// no orphaned records or billed-but-unlinked storage survive.
func (s *UploadService) UploadBundle(ctx context.Context, ownerID uint, files []IncomingFile, expiryHours int, password string) (*models.Bundle, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	var totalSize int64
	for _, f := range files {
		totalSize += f.Size
	}

	if err := s.quota.Reserve(ownerID, totalSize); err != nil {
		return nil, err
	}

	expiresAt := expiryFrom(expiryHours)
	hashed, err := HashSharePassword(password)
	if err != nil {
		s.quota.Release(ownerID, totalSize)
		return nil, err
	}

	records := make([]models.File, 0, len(files))
	storedKeys := make([]string, 0, len(files))

	rollback := func() {
		for _, key := range storedKeys {
			if err := s.store.Delete(ctx, key); err != nil {
				log.Printf("upload rollback: failed to delete object %s: %v", key, err)
			}
		}
		if err := s.quota.Release(ownerID, totalSize); err != nil {
			log.Printf("upload rollback: failed to release %d bytes for user %d: %v", totalSize, ownerID, err)
		}
	}

	for _, f := range files {
		key := objectKey()
		raw := f.ContentType == "application/pdf"
		url, err := s.store.Put(ctx, key, f.Reader, f.Size, f.ContentType, raw)
		if err != nil {
			rollback()
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
		storedKeys = append(storedKeys, key)

		records = append(records, models.File{
			ShareID:    uuid.NewString(),
			FileName:   f.Name,
			FileURL:    url,
			ObjectKey:  key,
			FileSize:   f.Size,
			FileType:   f.ContentType,
			UploadedBy: ownerID,
			Downloads:  0,
			Password:   hashed,
			ExpiresAt:  expiresAt,
		})
	}

	bundle := &models.Bundle{
		ShareID:   uuid.NewString(),
		CreatedBy: ownerID,
		ExpiresAt: expiresAt,
		Password:  hashed,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range records {
			if err := tx.Create(&records[i]).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(bundle).Error; err != nil {
			return err
		}
		for i := range records {
			member := models.BundleFile{
				BundleID: bundle.ID,
				FileID:   records[i].ID,
				Position: i,
			}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		rollback()
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	bundle.Files = records
	return bundle, nil
}

// UploadSingle uploads one file through the same staged pipeline,
// without an enclosing bundle
func (s *UploadService) UploadSingle(ctx context.Context, ownerID uint, f IncomingFile, expiryHours int, password string) (*models.File, error) {
	if err := s.quota.Reserve(ownerID, f.Size); err != nil {
		return nil, err
	}

	hashed, err := HashSharePassword(password)
	if err != nil {
		s.quota.Release(ownerID, f.Size)
		return nil, err
	}

	key := objectKey()
	raw := f.ContentType == "application/pdf"
	url, err := s.store.Put(ctx, key, f.Reader, f.Size, f.ContentType, raw)
	if err != nil {
		s.quota.Release(ownerID, f.Size)
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	record := &models.File{
		ShareID:    uuid.NewString(),
		FileName:   f.Name,
		FileURL:    url,
		ObjectKey:  key,
		FileSize:   f.Size,
		FileType:   f.ContentType,
		UploadedBy: ownerID,
		Downloads:  0,
		Password:   hashed,
		ExpiresAt:  expiryFrom(expiryHours),
	}

	if err := s.db.Create(record).Error; err != nil {
		if derr := s.store.Delete(ctx, key); derr != nil {
			log.Printf("upload rollback: failed to delete object %s: %v", key, derr)
		}
		s.quota.Release(ownerID, f.Size)
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return record, nil
}

// DeleteFile removes an owned file: object first, then record, then the
// quota reversal (clamped at zero)
func (s *UploadService) DeleteFile(ctx context.Context, ownerID uint, shareID string) error {
	var file models.File
	if err := s.db.Where("share_id = ?", shareID).First(&file).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}
	if file.UploadedBy != ownerID {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, file.ObjectKey); err != nil {
		return err
	}

	if err := s.db.Delete(&models.File{}, file.ID).Error; err != nil {
		return err
	}
	s.db.Where("file_id = ?", file.ID).Delete(&models.BundleFile{})

	return s.quota.Release(ownerID, file.FileSize)
}

// DeleteAllForUser removes every object and record owned by the user.
// Used by account deletion; storage counters die with the account.
func (s *UploadService) DeleteAllForUser(ctx context.Context, ownerID uint) error {
	var files []models.File
	if err := s.db.Where("uploaded_by = ?", ownerID).Find(&files).Error; err != nil {
		return err
	}

	for _, f := range files {
		if err := s.store.Delete(ctx, f.ObjectKey); err != nil {
			log.Printf("account cleanup: failed to delete object %s: %v", f.ObjectKey, err)
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var bundleIDs []uint
		if err := tx.Model(&models.Bundle{}).Where("created_by = ?", ownerID).Pluck("id", &bundleIDs).Error; err != nil {
			return err
		}
		if len(bundleIDs) > 0 {
			if err := tx.Where("bundle_id IN ?", bundleIDs).Delete(&models.BundleFile{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("created_by = ?", ownerID).Delete(&models.Bundle{}).Error; err != nil {
			return err
		}
		return tx.Where("uploaded_by = ?", ownerID).Delete(&models.File{}).Error
	})
}
