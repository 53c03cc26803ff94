package repository

import (
	"context"

	"github.com/sehee-xx/DO-DREAM-sub000/models"
	"gorm.io/gorm"
)

type sectionRepository struct {
	DB *gorm.DB
}

func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &sectionRepository{DB: db}
}

func (r *sectionRepository) ReplaceForFile(ctx context.Context, fileID uint, sections []*models.DocumentSection) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("uploaded_file_id = ?", fileID).Delete(&models.DocumentSection{}).Error; err != nil {
			return err
		}
		if len(sections) == 0 {
			return nil
		}
		return tx.Create(sections).Error
	})
}

func (r *sectionRepository) GetByFileID(ctx context.Context, fileID uint) ([]*models.DocumentSection, error) {
	var sections []*models.DocumentSection
	err := r.DB.WithContext(ctx).
		Where("uploaded_file_id = ?", fileID).
		Order("section_order ASC").
		Find(&sections).Error
	return sections, err
}

func (r *sectionRepository) GetByFileIDAndLevel(ctx context.Context, fileID uint, level int) ([]*models.DocumentSection, error) {
	var sections []*models.DocumentSection
	err := r.DB.WithContext(ctx).
		Where("uploaded_file_id = ? AND level = ?", fileID, level).
		Order("section_order ASC").
		Find(&sections).Error
	return sections, err
}

func (r *sectionRepository) DeleteByFileID(ctx context.Context, fileID uint) error {
	return r.DB.WithContext(ctx).
		Where("uploaded_file_id = ?", fileID).
		Delete(&models.DocumentSection{}).Error
}
