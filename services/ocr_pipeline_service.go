package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sehee-xx/DO-DREAM-sub000/models"
	"github.com/sehee-xx/DO-DREAM-sub000/pkg/logging"
	"github.com/sehee-xx/DO-DREAM-sub000/repository"
)

// QueueOcrJobs is the queue the upload side pushes OcrJob payloads to and
// the worker pool drains.
const QueueOcrJobs = "ocr_jobs"

var (
	ErrFileNotPending = errors.New("file is not pending")
	ErrAlreadyRunning = errors.New("file is already being processed")
)

// OcrPipelineService runs the full ingestion for one file: fetch the PDF,
// rasterize it, OCR each page, persist the pages and derive the outline.
// A single page failure skips that page and the run continues; only the
// conversion step and the status writes are fatal for the whole run.
type OcrPipelineService struct {
	fileRepo   repository.FileRepository
	pageRepo   repository.PageRepository
	rasterizer Rasterizer
	ocrEngine  OcrEngine
	downloader BlobDownloader
	temp       TempArtifactStore
	headings   *HeadingDetectionService
	events     EventPublisher

	mu       sync.Mutex
	inFlight map[uint]struct{}
}

func NewOcrPipelineService(
	fileRepo repository.FileRepository,
	pageRepo repository.PageRepository,
	rasterizer Rasterizer,
	ocrEngine OcrEngine,
	downloader BlobDownloader,
	temp TempArtifactStore,
	headings *HeadingDetectionService,
	events EventPublisher,
) *OcrPipelineService {
	return &OcrPipelineService{
		fileRepo:   fileRepo,
		pageRepo:   pageRepo,
		rasterizer: rasterizer,
		ocrEngine:  ocrEngine,
		downloader: downloader,
		temp:       temp,
		headings:   headings,
		events:     events,
		inFlight:   make(map[uint]struct{}),
	}
}

// Process runs the pipeline for one file. It accepts only PENDING files;
// duplicate jobs for a file already in flight are rejected before any state
// changes.
func (s *OcrPipelineService) Process(ctx context.Context, fileID uint) error {
	if !s.markInFlight(fileID) {
		return ErrAlreadyRunning
	}
	defer s.clearInFlight(fileID)

	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return fmt.Errorf("failed to load file %d: %w", fileID, err)
	}
	if file.OcrStatus != models.OcrStatusPending {
		logging.Logger.Warn("skip OCR job, file not pending", "fileID", fileID, "status", file.OcrStatus)
		return ErrFileNotPending
	}

	// the PROCESSING stamp must land before any work starts; if it cannot,
	// nothing below is allowed to run
	if err := s.fileRepo.UpdateStatus(ctx, fileID, models.OcrStatusProcessing); err != nil {
		return fmt.Errorf("failed to mark file %d processing: %w", fileID, err)
	}
	s.publish(&models.OcrEvent{
		Type:      models.EventOcrProcessing,
		FileID:    fileID,
		Status:    models.OcrStatusProcessing,
		Timestamp: time.Now(),
	})

	attempted, succeeded, runErr := s.run(ctx, file)

	if runErr != nil {
		logging.Logger.Error("OCR pipeline failed", "fileID", fileID, "error", runErr)
		if err := s.fileRepo.MarkFailed(ctx, fileID, runErr.Error()); err != nil {
			logging.Logger.Error("fail marking file failed", "fileID", fileID, "error", err)
		}
		s.publish(&models.OcrEvent{
			Type:      models.EventOcrFailed,
			FileID:    fileID,
			Status:    models.OcrStatusFailed,
			Message:   runErr.Error(),
			Timestamp: time.Now(),
		})
		return runErr
	}

	if err := s.fileRepo.MarkCompleted(ctx, fileID, attempted, succeeded); err != nil {
		logging.Logger.Error("fail marking file completed", "fileID", fileID, "error", err)
		return err
	}
	s.publish(&models.OcrEvent{
		Type:   models.EventOcrCompleted,
		FileID: fileID,
		Status: models.OcrStatusCompleted,
		Progress: &models.OcrProgressInfo{
			PagesAttempted: attempted,
			PagesSucceeded: succeeded,
			TotalPages:     attempted,
		},
		Timestamp: time.Now(),
	})

	logging.Logger.Info("OCR pipeline completed",
		"fileID", fileID,
		"pagesAttempted", attempted,
		"pagesSucceeded", succeeded,
	)
	return nil
}

// run does the work between the PROCESSING and the terminal status stamps.
// Every temp artifact it creates is removed before it returns, on success
// and on failure alike.
func (s *OcrPipelineService) run(ctx context.Context, file *models.UploadedFile) (attempted, succeeded int, err error) {
	var artifacts []string
	defer func() {
		for _, p := range artifacts {
			s.temp.DeleteTemp(p)
		}
	}()

	pdfPath := s.temp.TempPath("source", "pdf")
	if err := s.downloader.Download(ctx, file.FileKey, pdfPath); err != nil {
		return 0, 0, fmt.Errorf("failed to download pdf %s: %w", file.FileKey, err)
	}
	artifacts = append(artifacts, pdfPath)

	imagePaths, err := s.rasterizer.ConvertPDFToImages(ctx, pdfPath)
	if err != nil {
		return 0, 0, err
	}
	artifacts = append(artifacts, imagePaths...)

	for i, imagePath := range imagePaths {
		pageNumber := i + 1
		attempted++

		if err := s.processPage(ctx, file.ID, imagePath, pageNumber); err != nil {
			var ocrErr *OcrServiceError
			var persistErr *PersistenceError
			if errors.As(err, &ocrErr) || errors.As(err, &persistErr) {
				logging.Logger.Warn("skipping page", "fileID", file.ID, "page", pageNumber, "error", err)
				continue
			}
			return attempted, succeeded, err
		}
		succeeded++
	}

	// an outline is a derived nicety; losing it must not fail a run whose
	// pages are already saved
	pages, err := s.pageRepo.GetByFileID(ctx, file.ID)
	if err != nil {
		logging.Logger.Warn("skip heading detection, cannot load pages", "fileID", file.ID, "error", err)
		return attempted, succeeded, nil
	}
	if err := s.headings.DetectAndSaveSections(ctx, file.ID, pages); err != nil {
		logging.Logger.Warn("heading detection failed", "fileID", file.ID, "error", err)
	}

	return attempted, succeeded, nil
}

func (s *OcrPipelineService) processPage(ctx context.Context, fileID uint, imagePath string, pageNumber int) error {
	result, err := s.ocrEngine.ProcessImage(ctx, imagePath, pageNumber)
	if err != nil {
		return err
	}

	words := make([]models.OcrWord, len(result.Words))
	for i, w := range result.Words {
		words[i] = models.OcrWord{
			Text:       w.Text,
			Confidence: w.Confidence,
			X1:         w.X1, Y1: w.Y1,
			X2:         w.X2, Y2: w.Y2,
			X3:         w.X3, Y3: w.Y3,
			X4:         w.X4, Y4: w.Y4,
		}
	}

	page := &models.OcrPage{
		UploadedFileID: fileID,
		PageNumber:     result.PageNumber,
		FullText:       result.FullText,
		Words:          words,
	}
	if err := s.pageRepo.SavePage(ctx, page); err != nil {
		return &PersistenceError{Page: pageNumber, Err: err}
	}
	return nil
}

func (s *OcrPipelineService) publish(event *models.OcrEvent) {
	if err := s.events.PublishOcrEvent(event); err != nil {
		logging.Logger.Warn("fail publishing ocr event", "fileID", event.FileID, "type", event.Type, "error", err)
	}
}

func (s *OcrPipelineService) markInFlight(fileID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inFlight[fileID]; ok {
		return false
	}
	s.inFlight[fileID] = struct{}{}
	return true
}

func (s *OcrPipelineService) clearInFlight(fileID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, fileID)
}
