package models

import "time"

// OcrStatus is the processing state of an uploaded file. Transitions only
// move forward: PENDING -> PROCESSING -> COMPLETED or FAILED. A FAILED file
// can be re-queued, which restarts the run from PENDING.
type OcrStatus string

const (
	OcrStatusPending    OcrStatus = "PENDING"
	OcrStatusProcessing OcrStatus = "PROCESSING"
	OcrStatusCompleted  OcrStatus = "COMPLETED"
	OcrStatusFailed     OcrStatus = "FAILED"
)

// CanTransitionTo reports whether moving to next is a legal forward step.
func (s OcrStatus) CanTransitionTo(next OcrStatus) bool {
	switch s {
	case OcrStatusPending:
		return next == OcrStatusProcessing
	case OcrStatusProcessing:
		return next == OcrStatusCompleted || next == OcrStatusFailed
	default:
		return false
	}
}

type UploadedFile struct {
	ID               uint      `gorm:"primaryKey" json:"file_id"`
	OriginalFileName string    `gorm:"type:varchar(512);not null" json:"original_file_name"`
	FileKey          string    `gorm:"column:file_key;type:varchar(512);not null;index:idx_file_key" json:"file_key"`
	FileSize         int64     `gorm:"type:bigint" json:"file_size"`
	ContentType      string    `gorm:"type:varchar(100)" json:"content_type"`
	UploaderID       uint      `gorm:"index:idx_uploader_id" json:"uploader_id"`
	OcrStatus        OcrStatus `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_ocr_status" json:"ocr_status"`
	ErrorMessage     string    `gorm:"type:text" json:"error_message,omitempty"`

	// page outcome counters for the last run; attempted may exceed
	// succeeded when individual pages are skipped
	PagesAttempted int `gorm:"default:0" json:"pages_attempted"`
	PagesSucceeded int `gorm:"default:0" json:"pages_succeeded"`

	Pages []OcrPage `gorm:"foreignKey:UploadedFileID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (UploadedFile) TableName() string {
	return "uploaded_files"
}

func (f *UploadedFile) IsCompleted() bool {
	return f.OcrStatus == OcrStatusCompleted
}

func (f *UploadedFile) IsProcessing() bool {
	return f.OcrStatus == OcrStatusProcessing
}

// CanStartProcessing reports whether a new pipeline run may be queued for
// this file. Only PENDING files and FAILED retries are accepted; a file that
// is PROCESSING or COMPLETED must not be re-run in place.
func (f *UploadedFile) CanStartProcessing() bool {
	return f.OcrStatus == OcrStatusPending || f.OcrStatus == OcrStatusFailed
}
