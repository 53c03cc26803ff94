package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/sehee-xx/DO-DREAM-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFileRepo struct {
	mu    sync.Mutex
	files map[uint]*models.UploadedFile

	statusHistory []models.OcrStatus
	failUpdate    bool
}

func newFakeFileRepo(files ...*models.UploadedFile) *fakeFileRepo {
	repo := &fakeFileRepo{files: make(map[uint]*models.UploadedFile)}
	for _, f := range files {
		repo.files[f.ID] = f
	}
	return repo
}

func (r *fakeFileRepo) Create(ctx context.Context, file *models.UploadedFile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[file.ID] = file
	return nil
}

func (r *fakeFileRepo) GetByID(ctx context.Context, fileID uint) (*models.UploadedFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	file, ok := r.files[fileID]
	if !ok {
		return nil, errors.New("record not found")
	}
	copied := *file
	return &copied, nil
}

func (r *fakeFileRepo) ListByUploader(ctx context.Context, uploaderID uint) ([]*models.UploadedFile, error) {
	return nil, nil
}

func (r *fakeFileRepo) UpdateStatus(ctx context.Context, fileID uint, status models.OcrStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate {
		return errors.New("db down")
	}
	r.files[fileID].OcrStatus = status
	r.statusHistory = append(r.statusHistory, status)
	return nil
}

func (r *fakeFileRepo) MarkCompleted(ctx context.Context, fileID uint, attempted, succeeded int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	file := r.files[fileID]
	file.OcrStatus = models.OcrStatusCompleted
	file.PagesAttempted = attempted
	file.PagesSucceeded = succeeded
	r.statusHistory = append(r.statusHistory, models.OcrStatusCompleted)
	return nil
}

func (r *fakeFileRepo) MarkFailed(ctx context.Context, fileID uint, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	file := r.files[fileID]
	file.OcrStatus = models.OcrStatusFailed
	file.ErrorMessage = message
	r.statusHistory = append(r.statusHistory, models.OcrStatusFailed)
	return nil
}

func (r *fakeFileRepo) ClearError(ctx context.Context, fileID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	file := r.files[fileID]
	file.OcrStatus = models.OcrStatusPending
	file.ErrorMessage = ""
	return nil
}

type fakePageRepo struct {
	mu       sync.Mutex
	pages    []*models.OcrPage
	failPage int // SavePage fails for this page number
}

func (r *fakePageRepo) SavePage(ctx context.Context, page *models.OcrPage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failPage != 0 && page.PageNumber == r.failPage {
		return errors.New("constraint violation")
	}
	for i := range page.Words {
		page.Words[i].WordOrder = i
	}
	r.pages = append(r.pages, page)
	return nil
}

func (r *fakePageRepo) GetByFileID(ctx context.Context, fileID uint) ([]*models.OcrPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.OcrPage{}, r.pages...), nil
}

func (r *fakePageRepo) CountByFileID(ctx context.Context, fileID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.pages)), nil
}

func (r *fakePageRepo) DeleteByFileID(ctx context.Context, fileID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = nil
	return nil
}

type fakeSectionRepo struct {
	mu       sync.Mutex
	sections []*models.DocumentSection
	failNext bool
}

func (r *fakeSectionRepo) ReplaceForFile(ctx context.Context, fileID uint, sections []*models.DocumentSection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		return errors.New("db down")
	}
	r.sections = sections
	return nil
}

func (r *fakeSectionRepo) GetByFileID(ctx context.Context, fileID uint) ([]*models.DocumentSection, error) {
	return r.sections, nil
}

func (r *fakeSectionRepo) GetByFileIDAndLevel(ctx context.Context, fileID uint, level int) ([]*models.DocumentSection, error) {
	return nil, nil
}

func (r *fakeSectionRepo) DeleteByFileID(ctx context.Context, fileID uint) error {
	r.sections = nil
	return nil
}

type fakeTempStore struct {
	mu      sync.Mutex
	counter int
	created []string
	deleted []string
}

func (t *fakeTempStore) TempPath(prefix, ext string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counter++
	path := fmt.Sprintf("/tmp/fake/%s_%d.%s", prefix, t.counter, ext)
	t.created = append(t.created, path)
	return path
}

func (t *fakeTempStore) SaveTemp(data []byte, prefix, ext string) (string, error) {
	return t.TempPath(prefix, ext), nil
}

func (t *fakeTempStore) DeleteTemp(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deleted = append(t.deleted, path)
}

func (t *fakeTempStore) leaked() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	deleted := make(map[string]bool, len(t.deleted))
	for _, p := range t.deleted {
		deleted[p] = true
	}
	var leaked []string
	for _, p := range t.created {
		if !deleted[p] {
			leaked = append(leaked, p)
		}
	}
	return leaked
}

type fakeDownloader struct {
	err error
}

func (d *fakeDownloader) Download(ctx context.Context, fileKey, destPath string) error {
	return d.err
}

type fakeRasterizer struct {
	temp  *fakeTempStore
	pages int
	err   error
}

func (r *fakeRasterizer) ConvertPDFToImages(ctx context.Context, pdfPath string) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	paths := make([]string, r.pages)
	for i := range paths {
		paths[i] = r.temp.TempPath(fmt.Sprintf("page_%d", i+1), "png")
	}
	return paths, nil
}

type fakeOcrEngine struct {
	failPages map[int]bool
}

func (e *fakeOcrEngine) ProcessImage(ctx context.Context, imagePath string, pageNumber int) (*models.PageOcrResult, error) {
	if e.failPages[pageNumber] {
		return nil, &OcrServiceError{Page: pageNumber, Err: errors.New("engine timeout")}
	}
	return &models.PageOcrResult{
		PageNumber: pageNumber,
		FullText:   fmt.Sprintf("text of page %d", pageNumber),
		Words: []models.WordInfo{
			{Text: "hello", Confidence: 0.9, Y1: 0, Y3: 10},
			{Text: "world", Confidence: 0.9, Y1: 0, Y3: 10},
		},
	}, nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []*models.OcrEvent
}

func (e *fakeEvents) PublishOcrEvent(event *models.OcrEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *fakeEvents) types() []models.OcrEventType {
	e.mu.Lock()
	defer e.mu.Unlock()
	types := make([]models.OcrEventType, len(e.events))
	for i, ev := range e.events {
		types[i] = ev.Type
	}
	return types
}

type pipelineFixture struct {
	fileRepo    *fakeFileRepo
	pageRepo    *fakePageRepo
	sectionRepo *fakeSectionRepo
	temp        *fakeTempStore
	rasterizer  *fakeRasterizer
	engine      *fakeOcrEngine
	downloader  *fakeDownloader
	events      *fakeEvents
	pipeline    *OcrPipelineService
}

func newPipelineFixture(file *models.UploadedFile) *pipelineFixture {
	f := &pipelineFixture{
		fileRepo:    newFakeFileRepo(file),
		pageRepo:    &fakePageRepo{},
		sectionRepo: &fakeSectionRepo{},
		temp:        &fakeTempStore{},
		engine:      &fakeOcrEngine{},
		downloader:  &fakeDownloader{},
		events:      &fakeEvents{},
	}
	f.rasterizer = &fakeRasterizer{temp: f.temp, pages: 3}
	f.pipeline = NewOcrPipelineService(
		f.fileRepo,
		f.pageRepo,
		f.rasterizer,
		f.engine,
		f.downloader,
		f.temp,
		NewHeadingDetectionService(f.sectionRepo),
		f.events,
	)
	return f
}

func pendingFile(id uint) *models.UploadedFile {
	return &models.UploadedFile{
		ID:        id,
		FileKey:   fmt.Sprintf("pdfs/file_%d.pdf", id),
		OcrStatus: models.OcrStatusPending,
	}
}

func TestProcessHappyPath(t *testing.T) {
	f := newPipelineFixture(pendingFile(1))

	require.NoError(t, f.pipeline.Process(context.Background(), 1))

	file, _ := f.fileRepo.GetByID(context.Background(), 1)
	assert.Equal(t, models.OcrStatusCompleted, file.OcrStatus)
	assert.Equal(t, 3, file.PagesAttempted)
	assert.Equal(t, 3, file.PagesSucceeded)
	assert.Len(t, f.pageRepo.pages, 3)
	assert.Empty(t, f.temp.leaked(), "all temp artifacts must be removed")

	assert.Equal(t,
		[]models.OcrEventType{models.EventOcrProcessing, models.EventOcrCompleted},
		f.events.types(),
	)
}

func TestProcessSkipsFailedPageAndCompletes(t *testing.T) {
	f := newPipelineFixture(pendingFile(1))
	f.engine.failPages = map[int]bool{2: true}

	require.NoError(t, f.pipeline.Process(context.Background(), 1))

	file, _ := f.fileRepo.GetByID(context.Background(), 1)
	assert.Equal(t, models.OcrStatusCompleted, file.OcrStatus)
	assert.Equal(t, 3, file.PagesAttempted)
	assert.Equal(t, 2, file.PagesSucceeded)

	require.Len(t, f.pageRepo.pages, 2)
	assert.Equal(t, 1, f.pageRepo.pages[0].PageNumber)
	assert.Equal(t, 3, f.pageRepo.pages[1].PageNumber)
	assert.Empty(t, f.temp.leaked())
}

func TestProcessSkipsPageOnPersistenceFailure(t *testing.T) {
	f := newPipelineFixture(pendingFile(1))
	f.pageRepo.failPage = 3

	require.NoError(t, f.pipeline.Process(context.Background(), 1))

	file, _ := f.fileRepo.GetByID(context.Background(), 1)
	assert.Equal(t, models.OcrStatusCompleted, file.OcrStatus)
	assert.Equal(t, 3, file.PagesAttempted)
	assert.Equal(t, 2, file.PagesSucceeded)
	assert.Empty(t, f.temp.leaked())
}

func TestProcessConversionFailureMarksFailed(t *testing.T) {
	f := newPipelineFixture(pendingFile(1))
	f.rasterizer.err = &ConversionError{Err: errors.New("broken xref table")}

	err := f.pipeline.Process(context.Background(), 1)
	require.Error(t, err)

	file, _ := f.fileRepo.GetByID(context.Background(), 1)
	assert.Equal(t, models.OcrStatusFailed, file.OcrStatus)
	assert.Contains(t, file.ErrorMessage, "broken xref table")
	assert.Empty(t, f.pageRepo.pages)
	assert.Empty(t, f.temp.leaked(), "the downloaded pdf must still be removed")

	assert.Equal(t,
		[]models.OcrEventType{models.EventOcrProcessing, models.EventOcrFailed},
		f.events.types(),
	)
}

func TestProcessDownloadFailureMarksFailed(t *testing.T) {
	f := newPipelineFixture(pendingFile(1))
	f.downloader.err = errors.New("object not found")

	err := f.pipeline.Process(context.Background(), 1)
	require.Error(t, err)

	file, _ := f.fileRepo.GetByID(context.Background(), 1)
	assert.Equal(t, models.OcrStatusFailed, file.OcrStatus)
	assert.Empty(t, f.temp.leaked())
}

func TestProcessRejectsNonPendingFile(t *testing.T) {
	file := pendingFile(1)
	file.OcrStatus = models.OcrStatusCompleted
	f := newPipelineFixture(file)

	err := f.pipeline.Process(context.Background(), 1)
	require.ErrorIs(t, err, ErrFileNotPending)

	assert.Empty(t, f.events.types())
	assert.Empty(t, f.fileRepo.statusHistory)
}

func TestProcessRejectsUnknownFile(t *testing.T) {
	f := newPipelineFixture(pendingFile(1))

	err := f.pipeline.Process(context.Background(), 99)
	require.Error(t, err)
}

func TestProcessStopsWhenStatusStampFails(t *testing.T) {
	f := newPipelineFixture(pendingFile(1))
	f.fileRepo.failUpdate = true

	err := f.pipeline.Process(context.Background(), 1)
	require.Error(t, err)

	assert.Empty(t, f.pageRepo.pages)
	assert.Empty(t, f.temp.created, "no work may start without the processing stamp")
}

func TestProcessDetectsHeadings(t *testing.T) {
	f := newPipelineFixture(pendingFile(1))
	f.engine = &fakeOcrEngine{}
	// replace the engine with one page that carries an oversized title word
	f.pipeline = NewOcrPipelineService(
		f.fileRepo, f.pageRepo, &fakeRasterizer{temp: f.temp, pages: 1},
		headingEngine{}, f.downloader, f.temp,
		NewHeadingDetectionService(f.sectionRepo), f.events,
	)

	require.NoError(t, f.pipeline.Process(context.Background(), 1))

	require.Len(t, f.sectionRepo.sections, 1)
	assert.Equal(t, "1. Introduction", f.sectionRepo.sections[0].Title)
	assert.Equal(t, 0, f.sectionRepo.sections[0].SectionOrder)
}

func TestProcessToleratesHeadingFailure(t *testing.T) {
	f := newPipelineFixture(pendingFile(1))
	f.sectionRepo.failNext = true

	require.NoError(t, f.pipeline.Process(context.Background(), 1))

	file, _ := f.fileRepo.GetByID(context.Background(), 1)
	assert.Equal(t, models.OcrStatusCompleted, file.OcrStatus)
}

func TestProcessRejectsDuplicateRun(t *testing.T) {
	f := newPipelineFixture(pendingFile(1))
	engine := &blockingEngine{started: make(chan struct{}), release: make(chan struct{})}
	f.pipeline = NewOcrPipelineService(
		f.fileRepo, f.pageRepo, &fakeRasterizer{temp: f.temp, pages: 1},
		engine, f.downloader, f.temp,
		NewHeadingDetectionService(f.sectionRepo), f.events,
	)

	done := make(chan error, 1)
	go func() {
		done <- f.pipeline.Process(context.Background(), 1)
	}()
	<-engine.started

	err := f.pipeline.Process(context.Background(), 1)
	require.ErrorIs(t, err, ErrAlreadyRunning)

	close(engine.release)
	require.NoError(t, <-done)
}

type blockingEngine struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (e *blockingEngine) ProcessImage(ctx context.Context, imagePath string, pageNumber int) (*models.PageOcrResult, error) {
	e.once.Do(func() { close(e.started) })
	<-e.release
	return &models.PageOcrResult{PageNumber: pageNumber, FullText: "x"}, nil
}

// headingEngine returns a page whose first word dwarfs the rest.
type headingEngine struct{}

func (headingEngine) ProcessImage(ctx context.Context, imagePath string, pageNumber int) (*models.PageOcrResult, error) {
	words := []models.WordInfo{{Text: "1. Introduction", Y1: 0, Y3: 40}}
	for i := 0; i < 10; i++ {
		words = append(words, models.WordInfo{Text: "body", Y1: 0, Y3: 10})
	}
	return &models.PageOcrResult{
		PageNumber: pageNumber,
		FullText:   "1. Introduction body",
		Words:      words,
	}, nil
}
