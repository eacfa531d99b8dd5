package services

import (
	"github.com/filoshare/backend/internal/models"
	"gorm.io/gorm"
)

// QuotaService tracks per-user storage used vs. limit.
// Reservation is a single conditional UPDATE, so two concurrent uploads
// can never both slip past the limit on a stale counter.
type QuotaService struct {
	db *gorm.DB
}

func NewQuotaService(db *gorm.DB) *QuotaService {
	return &QuotaService{db: db}
}

// Reserve atomically adds n bytes to the user's usage, but only if the
// result stays within the plan limit. Returns ErrStorageFull otherwise.
func (s *QuotaService) Reserve(userID uint, n int64) error {
	if n < 0 {
		return ErrValidation
	}

	res := s.db.Model(&models.User{}).
		Where("id = ? AND storage_used + ? <= storage_limit", userID, n).
		UpdateColumn("storage_used", gorm.Expr("storage_used + ?", n))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrStorageFull
	}
	return nil
}

// Release subtracts n bytes from the user's usage, clamped at zero so
// double-decrements cannot drive the counter negative.
func (s *QuotaService) Release(userID uint, n int64) error {
	if n < 0 {
		return ErrValidation
	}

	return s.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("storage_used",
			gorm.Expr("CASE WHEN storage_used > ? THEN storage_used - ? ELSE 0 END", n, n)).Error
}
