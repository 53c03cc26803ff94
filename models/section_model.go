package models

import "time"

// DocumentSection is one detected heading of a file's outline. Sections are
// derived entirely from the file's OCR pages and can be regenerated at any
// time; the detector replaces a file's sections as a batch.
type DocumentSection struct {
	ID             uint   `gorm:"primaryKey" json:"section_id"`
	UploadedFileID uint   `gorm:"not null;index:idx_section_file" json:"file_id"`
	Title          string `gorm:"type:varchar(512);not null" json:"title"`
	Level          int    `gorm:"not null" json:"level"` // 1 chapter, 2 section, 3 sub-section
	StartPage      int    `gorm:"not null" json:"start_page"`
	EndPage        int    `gorm:"not null" json:"end_page"`
	FontSize       int    `gorm:"not null" json:"font_size"` // detected glyph height in pixels
	SectionOrder   int    `gorm:"not null;index:idx_section_order" json:"section_order"`

	CreatedAt time.Time `json:"created_at"`
}

func (DocumentSection) TableName() string {
	return "document_sections"
}
