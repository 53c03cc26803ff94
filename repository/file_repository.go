package repository

import (
	"context"
	"time"

	"github.com/sehee-xx/DO-DREAM-sub000/models"
	"gorm.io/gorm"
)

type fileRepository struct {
	DB *gorm.DB
}

func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{DB: db}
}

func (r *fileRepository) Create(ctx context.Context, file *models.UploadedFile) error {
	return r.DB.WithContext(ctx).Create(file).Error
}

func (r *fileRepository) GetByID(ctx context.Context, fileID uint) (*models.UploadedFile, error) {
	var file models.UploadedFile
	err := r.DB.WithContext(ctx).Where("id = ?", fileID).First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *fileRepository) ListByUploader(ctx context.Context, uploaderID uint) ([]*models.UploadedFile, error) {
	var files []*models.UploadedFile
	err := r.DB.WithContext(ctx).
		Where("uploader_id = ?", uploaderID).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}

func (r *fileRepository) UpdateStatus(ctx context.Context, fileID uint, status models.OcrStatus) error {
	return r.DB.WithContext(ctx).
		Model(&models.UploadedFile{}).
		Where("id = ?", fileID).
		Update("ocr_status", status).Error
}

func (r *fileRepository) MarkCompleted(ctx context.Context, fileID uint, attempted, succeeded int) error {
	now := time.Now()
	return r.DB.WithContext(ctx).
		Model(&models.UploadedFile{}).
		Where("id = ?", fileID).
		Updates(map[string]interface{}{
			"ocr_status":      models.OcrStatusCompleted,
			"completed_at":    now,
			"pages_attempted": attempted,
			"pages_succeeded": succeeded,
		}).Error
}

func (r *fileRepository) MarkFailed(ctx context.Context, fileID uint, message string) error {
	return r.DB.WithContext(ctx).
		Model(&models.UploadedFile{}).
		Where("id = ?", fileID).
		Updates(map[string]interface{}{
			"ocr_status":    models.OcrStatusFailed,
			"error_message": message,
		}).Error
}

func (r *fileRepository) ClearError(ctx context.Context, fileID uint) error {
	return r.DB.WithContext(ctx).
		Model(&models.UploadedFile{}).
		Where("id = ?", fileID).
		Updates(map[string]interface{}{
			"ocr_status":      models.OcrStatusPending,
			"error_message":   "",
			"pages_attempted": 0,
			"pages_succeeded": 0,
			"completed_at":    nil,
		}).Error
}
