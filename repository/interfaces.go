package repository

import (
	"context"

	"github.com/sehee-xx/DO-DREAM-sub000/models"
)

type FileRepository interface {
	Create(ctx context.Context, file *models.UploadedFile) error

	GetByID(ctx context.Context, fileID uint) (*models.UploadedFile, error)
	ListByUploader(ctx context.Context, uploaderID uint) ([]*models.UploadedFile, error)

	UpdateStatus(ctx context.Context, fileID uint, status models.OcrStatus) error
	// MarkCompleted stamps COMPLETED, the completion time and the page
	// counters of the finished run in one update.
	MarkCompleted(ctx context.Context, fileID uint, attempted, succeeded int) error
	// MarkFailed stamps FAILED with the captured error message.
	MarkFailed(ctx context.Context, fileID uint, message string) error
	// ClearError resets the error message and counters before a retry.
	ClearError(ctx context.Context, fileID uint) error
}

type PageRepository interface {
	// SavePage persists one page with its words in a single transaction.
	// Word order indices are assigned 0..N-1 in slice order before the write.
	SavePage(ctx context.Context, page *models.OcrPage) error

	GetByFileID(ctx context.Context, fileID uint) ([]*models.OcrPage, error)
	CountByFileID(ctx context.Context, fileID uint) (int64, error)
	DeleteByFileID(ctx context.Context, fileID uint) error
}

type SectionRepository interface {
	// ReplaceForFile drops the file's existing sections and inserts the new
	// batch, keeping the outline regenerable without touching OCR data.
	ReplaceForFile(ctx context.Context, fileID uint, sections []*models.DocumentSection) error

	GetByFileID(ctx context.Context, fileID uint) ([]*models.DocumentSection, error)
	GetByFileIDAndLevel(ctx context.Context, fileID uint, level int) ([]*models.DocumentSection, error)
	DeleteByFileID(ctx context.Context, fileID uint) error
}
