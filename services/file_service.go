package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/sehee-xx/DO-DREAM-sub000/config"
	"github.com/sehee-xx/DO-DREAM-sub000/models"
	"github.com/sehee-xx/DO-DREAM-sub000/pkg/logging"
	"github.com/sehee-xx/DO-DREAM-sub000/platform/cache"
	"github.com/sehee-xx/DO-DREAM-sub000/platform/storage"
	"github.com/sehee-xx/DO-DREAM-sub000/repository"
)

const (
	fullTextCacheTTL  = 30 * time.Minute
	downloadURLExpiry = 1 * time.Hour
)

var (
	ErrFileNotFound   = errors.New("file not found")
	ErrNotPdf         = errors.New("only PDF files are accepted")
	ErrFileTooLarge   = errors.New("file exceeds the size limit")
	ErrNotCompleted   = errors.New("file has not completed OCR")
	ErrCannotStart    = errors.New("file cannot start processing in its current state")
	ErrInvalidLevel   = errors.New("section level must be 1, 2 or 3")
	ErrEmptyFileName  = errors.New("file name is required")
	ErrNotUploadedYet = errors.New("file has not been uploaded to storage yet")
)

// FileService owns the upload surface and every read path over processed
// files. Processing itself happens in the worker pool; this service only
// queues jobs and reads results.
type FileService struct {
	cfg         *config.Config
	fileRepo    repository.FileRepository
	pageRepo    repository.PageRepository
	sectionRepo repository.SectionRepository
	storage     *storage.Service
	queue       cache.MessageQueue
	cache       cache.CacheService
}

func NewFileService(
	cfg *config.Config,
	fileRepo repository.FileRepository,
	pageRepo repository.PageRepository,
	sectionRepo repository.SectionRepository,
	storage *storage.Service,
	queue cache.MessageQueue,
	cacheService cache.CacheService,
) *FileService {
	return &FileService{
		cfg:         cfg,
		fileRepo:    fileRepo,
		pageRepo:    pageRepo,
		sectionRepo: sectionRepo,
		storage:     storage,
		queue:       queue,
		cache:       cacheService,
	}
}

// UploadPDF stores the document, records it as PENDING and queues an OCR job.
func (s *FileService) UploadPDF(ctx context.Context, uploaderID uint, fileName, contentType string, size int64, r io.Reader) (*models.FileUploadResp, error) {
	if err := s.validateUpload(fileName, contentType, size); err != nil {
		return nil, err
	}

	fileKey := s.storage.FileKeyGenerator.GenerateFileKey(fileName, "")
	if err := s.storage.Upload(ctx, fileKey, r, size, "application/pdf"); err != nil {
		return nil, fmt.Errorf("failed to store pdf: %w", err)
	}

	file := &models.UploadedFile{
		OriginalFileName: fileName,
		FileKey:          fileKey,
		FileSize:         size,
		ContentType:      "application/pdf",
		UploaderID:       uploaderID,
		OcrStatus:        models.OcrStatusPending,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		// the blob is orphaned if the record cannot be written
		if delErr := s.storage.Delete(ctx, fileKey); delErr != nil {
			logging.Logger.Error("fail deleting orphaned blob", "fileKey", fileKey, "error", delErr)
		}
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}

	if err := s.enqueueJob(file.ID); err != nil {
		logging.Logger.Error("fail queueing ocr job after upload", "fileID", file.ID, "error", err)
		return nil, err
	}

	logging.Logger.Info("PDF uploaded", "fileID", file.ID, "fileKey", fileKey, "size", size)
	return &models.FileUploadResp{
		FileID:           file.ID,
		OriginalFileName: file.OriginalFileName,
		FileSize:         file.FileSize,
		OcrStatus:        file.OcrStatus,
		Message:          "upload accepted, OCR queued",
		UploadedAt:       file.CreatedAt,
	}, nil
}

// RequestPresignedUpload records a PENDING file and hands the client a
// presigned POST so large PDFs skip this server. Processing is not queued
// here; the client calls StartProcessing once the upload finished.
func (s *FileService) RequestPresignedUpload(ctx context.Context, req *models.PresignedUploadReq) (*models.PresignedUploadResp, error) {
	if err := s.validateUpload(req.FileName, req.ContentType, req.FileSize); err != nil {
		return nil, err
	}

	resp, err := s.storage.GeneratePresignedPostUpload(req.FileName, s.cfg.MaxFileSize, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	file := &models.UploadedFile{
		OriginalFileName: req.FileName,
		FileKey:          resp.FileKey,
		FileSize:         req.FileSize,
		ContentType:      "application/pdf",
		UploaderID:       req.UploaderID,
		OcrStatus:        models.OcrStatusPending,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}
	resp.FileID = file.ID

	return resp, nil
}

// StartProcessing queues an OCR run for a PENDING or FAILED file. A FAILED
// retry drops the partial pages and sections of the previous run first, so
// the new run starts from a clean slate.
func (s *FileService) StartProcessing(ctx context.Context, fileID uint) error {
	file, err := s.getFile(ctx, fileID)
	if err != nil {
		return err
	}
	if !file.CanStartProcessing() {
		return ErrCannotStart
	}

	if file.OcrStatus == models.OcrStatusPending {
		// a presigned upload may never have happened
		exists, err := s.storage.FileExists(file.FileKey)
		if err != nil {
			return fmt.Errorf("failed to check storage: %w", err)
		}
		if !exists {
			return ErrNotUploadedYet
		}
	}

	if file.OcrStatus == models.OcrStatusFailed {
		if err := s.pageRepo.DeleteByFileID(ctx, fileID); err != nil {
			return fmt.Errorf("failed to clear pages for retry: %w", err)
		}
		if err := s.sectionRepo.DeleteByFileID(ctx, fileID); err != nil {
			return fmt.Errorf("failed to clear sections for retry: %w", err)
		}
		if err := s.fileRepo.ClearError(ctx, fileID); err != nil {
			return fmt.Errorf("failed to reset file for retry: %w", err)
		}
		s.invalidateFullText(fileID)
	}

	if err := s.enqueueJob(fileID); err != nil {
		return err
	}

	logging.Logger.Info("OCR job queued", "fileID", fileID)
	return nil
}

func (s *FileService) GetStatus(ctx context.Context, fileID uint) (*models.FileStatusResp, error) {
	file, err := s.getFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	return &models.FileStatusResp{
		FileID:         file.ID,
		OcrStatus:      file.OcrStatus,
		ErrorMessage:   file.ErrorMessage,
		PagesAttempted: file.PagesAttempted,
		PagesSucceeded: file.PagesSucceeded,
		Message:        statusMessage(file.OcrStatus),
	}, nil
}

func (s *FileService) GetPages(ctx context.Context, fileID uint) ([]*models.OcrPage, error) {
	if _, err := s.getFile(ctx, fileID); err != nil {
		return nil, err
	}
	return s.pageRepo.GetByFileID(ctx, fileID)
}

// GetFullText joins the page texts of a COMPLETED file, each page prefixed
// with a marker line. The joined text is cached; the cache is dropped when a
// retry rewrites the pages.
func (s *FileService) GetFullText(ctx context.Context, fileID uint) (string, error) {
	file, err := s.getFile(ctx, fileID)
	if err != nil {
		return "", err
	}
	if !file.IsCompleted() {
		return "", ErrNotCompleted
	}

	value, err := s.cache.GetOrLoad(fullTextCacheKey(fileID), fullTextCacheTTL, func() (interface{}, error) {
		pages, err := s.pageRepo.GetByFileID(ctx, fileID)
		if err != nil {
			return nil, err
		}
		return joinPageTexts(pages), nil
	})
	if err != nil {
		return "", err
	}

	text, ok := value.(string)
	if !ok {
		return fmt.Sprint(value), nil
	}
	// a redis hit hands back the stored JSON string form
	if strings.HasPrefix(text, `"`) {
		var decoded string
		if err := json.Unmarshal([]byte(text), &decoded); err == nil {
			return decoded, nil
		}
	}
	return text, nil
}

func (s *FileService) GetStructure(ctx context.Context, fileID uint) (*models.DocumentStructureResp, error) {
	file, err := s.getFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	sections, err := s.sectionRepo.GetByFileID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	pageCount, err := s.pageRepo.CountByFileID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	message := "document structure"
	if len(sections) == 0 {
		message = "no sections detected"
	}
	return &models.DocumentStructureResp{
		FileID:     file.ID,
		FileName:   file.OriginalFileName,
		TotalPages: int(pageCount),
		Sections:   sections,
		Message:    message,
	}, nil
}

func (s *FileService) GetSectionsByLevel(ctx context.Context, fileID uint, level int) ([]*models.DocumentSection, error) {
	if level < 1 || level > 3 {
		return nil, ErrInvalidLevel
	}
	if _, err := s.getFile(ctx, fileID); err != nil {
		return nil, err
	}
	return s.sectionRepo.GetByFileIDAndLevel(ctx, fileID, level)
}

func (s *FileService) GetDownloadURL(ctx context.Context, fileID uint) (*models.DownloadUrlResp, error) {
	file, err := s.getFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.GeneratePresignedGetDownload(file.FileKey, downloadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign download: %w", err)
	}

	return &models.DownloadUrlResp{
		FileID:      file.ID,
		FileName:    file.OriginalFileName,
		DownloadURL: url,
		ExpiresIn:   int64(downloadURLExpiry.Seconds()),
	}, nil
}

func (s *FileService) ListByUploader(ctx context.Context, uploaderID uint) ([]*models.UploadedFile, error) {
	return s.fileRepo.ListByUploader(ctx, uploaderID)
}

func (s *FileService) getFile(ctx context.Context, fileID uint) (*models.UploadedFile, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, ErrFileNotFound
	}
	return file, nil
}

func (s *FileService) validateUpload(fileName, contentType string, size int64) error {
	if strings.TrimSpace(fileName) == "" {
		return ErrEmptyFileName
	}
	if size <= 0 || size > s.cfg.MaxFileSize {
		return ErrFileTooLarge
	}
	isPdfName := strings.EqualFold(filepath.Ext(fileName), ".pdf")
	isPdfType := contentType == "" || strings.EqualFold(contentType, "application/pdf")
	if !isPdfName || !isPdfType {
		return ErrNotPdf
	}
	return nil
}

func (s *FileService) enqueueJob(fileID uint) error {
	job := models.OcrJob{FileID: fileID}
	if err := s.queue.PushToQueue(QueueOcrJobs, job); err != nil {
		return fmt.Errorf("failed to queue ocr job: %w", err)
	}
	return nil
}

func (s *FileService) invalidateFullText(fileID uint) {
	if err := s.cache.DelCache(fullTextCacheKey(fileID)); err != nil {
		logging.Logger.Warn("fail invalidating full text cache", "fileID", fileID, "error", err)
	}
}

func fullTextCacheKey(fileID uint) string {
	return fmt.Sprintf("file:fulltext:%d", fileID)
}

func joinPageTexts(pages []*models.OcrPage) string {
	var b strings.Builder
	for i, page := range pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "=== Page %d ===\n", page.PageNumber)
		b.WriteString(page.FullText)
	}
	return b.String()
}

func statusMessage(status models.OcrStatus) string {
	switch status {
	case models.OcrStatusPending:
		return "waiting for OCR to start"
	case models.OcrStatusProcessing:
		return "OCR in progress"
	case models.OcrStatusCompleted:
		return "OCR completed"
	case models.OcrStatusFailed:
		return "OCR failed"
	default:
		return "unknown status"
	}
}
