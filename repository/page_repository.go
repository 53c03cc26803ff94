package repository

import (
	"context"

	"github.com/sehee-xx/DO-DREAM-sub000/models"
	"gorm.io/gorm"
)

type pageRepository struct {
	DB *gorm.DB
}

func NewPageRepository(db *gorm.DB) PageRepository {
	return &pageRepository{DB: db}
}

func (r *pageRepository) SavePage(ctx context.Context, page *models.OcrPage) error {
	for i := range page.Words {
		page.Words[i].WordOrder = i
	}
	// gorm inserts the words together with the page; wrap in a transaction
	// so a failed word insert never leaves a partial page behind
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(page).Error
	})
}

func (r *pageRepository) GetByFileID(ctx context.Context, fileID uint) ([]*models.OcrPage, error) {
	var pages []*models.OcrPage
	err := r.DB.WithContext(ctx).
		Where("uploaded_file_id = ?", fileID).
		Order("page_number ASC").
		Preload("Words", func(db *gorm.DB) *gorm.DB {
			return db.Order("ocr_words.word_order ASC")
		}).
		Find(&pages).Error
	return pages, err
}

func (r *pageRepository) CountByFileID(ctx context.Context, fileID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&models.OcrPage{}).
		Where("uploaded_file_id = ?", fileID).
		Count(&count).Error
	return count, err
}

func (r *pageRepository) DeleteByFileID(ctx context.Context, fileID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("ocr_page_id IN (?)",
			tx.Model(&models.OcrPage{}).Select("id").Where("uploaded_file_id = ?", fileID),
		).Delete(&models.OcrWord{}).Error
		if err != nil {
			return err
		}
		return tx.Where("uploaded_file_id = ?", fileID).Delete(&models.OcrPage{}).Error
	})
}
