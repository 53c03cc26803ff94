package services

import (
	"context"

	"github.com/sehee-xx/DO-DREAM-sub000/models"
)

// Rasterizer renders a PDF into per-page temp images. Cleanup of the
// returned artifacts is the caller's responsibility.
type Rasterizer interface {
	ConvertPDFToImages(ctx context.Context, pdfPath string) ([]string, error)
}

// OcrEngine recognizes the words on one page image.
type OcrEngine interface {
	ProcessImage(ctx context.Context, imagePath string, pageNumber int) (*models.PageOcrResult, error)
}

// BlobDownloader fetches an uploaded PDF to a local path for processing.
type BlobDownloader interface {
	Download(ctx context.Context, fileKey, destPath string) error
}

// TempArtifactStore is the scoped temp area for one run's artifacts.
type TempArtifactStore interface {
	TempPath(prefix, ext string) string
	SaveTemp(data []byte, prefix, ext string) (string, error)
	DeleteTemp(path string)
}

// EventPublisher pushes status change notifications to subscribers.
type EventPublisher interface {
	PublishOcrEvent(event *models.OcrEvent) error
}
