package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sehee-xx/DO-DREAM-sub000/models"
	"github.com/sehee-xx/DO-DREAM-sub000/pkg/logging"
	"github.com/sehee-xx/DO-DREAM-sub000/repository"
)

// size ratios against the page's average word height
const (
	candidateRatio = 1.4 // below this a word is never a heading
	strongRatio    = 1.8 // at or above this, size alone makes a candidate
	chapterRatio   = 2.5 // level 1
)

// headingPatterns match common chapter and section title shapes, Korean and
// Latin. A word must match a whole pattern, substring hits do not count.
var headingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\[.*\]$`),                 // [부록]
	regexp.MustCompile(`^[가-힣]{1,10}\s*\d+$`),      // 단원 3
	regexp.MustCompile(`(?i)^chapter\s+\d+.+$`),    // Chapter 1 Intro
	regexp.MustCompile(`^[IVX]+\.\s*.+$`),          // IV. Results
	regexp.MustCompile(`^\d+\.\s*.+$`),             // 2. Methods
	regexp.MustCompile(`^제\s*\d+\s*장.+$`),          // 제 1 장 서론
	regexp.MustCompile(`^\d+-\d+.+$`),              // 1-2 개요
	regexp.MustCompile(`^\d+\)\s*.+$`),             // 3) 실험
}

// HeadingDetectionService derives a document outline from saved OCR pages.
// Detection is deterministic over page content, so rerunning it replaces
// the previous outline with an identical one.
type HeadingDetectionService struct {
	sectionRepo repository.SectionRepository
}

func NewHeadingDetectionService(sectionRepo repository.SectionRepository) *HeadingDetectionService {
	return &HeadingDetectionService{sectionRepo: sectionRepo}
}

// DetectAndSaveSections scans the pages for headings and replaces the file's
// stored outline with the result.
func (s *HeadingDetectionService) DetectAndSaveSections(ctx context.Context, fileID uint, pages []*models.OcrPage) error {
	sections := DetectSections(fileID, pages)

	if err := s.sectionRepo.ReplaceForFile(ctx, fileID, sections); err != nil {
		return fmt.Errorf("failed to save sections: %w", err)
	}

	logging.Logger.Info("Heading detection completed", "fileID", fileID, "sections", len(sections))
	return nil
}

// DetectSections finds heading words across the pages and turns them into an
// ordered outline. Section order is global over the whole document, 0-based,
// following page order and word order within a page.
func DetectSections(fileID uint, pages []*models.OcrPage) []*models.DocumentSection {
	sections := make([]*models.DocumentSection, 0)
	order := 0

	for _, page := range pages {
		avgHeight := averageWordHeight(page.Words)
		if avgHeight <= 0 {
			continue
		}

		for i := range page.Words {
			word := &page.Words[i]
			level, ok := classifyHeading(word, avgHeight)
			if !ok {
				continue
			}

			sections = append(sections, &models.DocumentSection{
				UploadedFileID: fileID,
				Title:          strings.TrimSpace(word.Text),
				Level:          level,
				StartPage:      page.PageNumber,
				EndPage:        page.PageNumber,
				FontSize:       word.Height(),
				SectionOrder:   order,
			})
			order++
		}
	}

	return sections
}

// classifyHeading decides whether a word is a heading and at which level.
// A word qualifies when it is at least candidateRatio above the page average
// and either looks like a title or is strongRatio above the average on size
// alone.
func classifyHeading(word *models.OcrWord, avgHeight float64) (int, bool) {
	height := float64(word.Height())
	if height < candidateRatio*avgHeight {
		return 0, false
	}

	if !isHeadingPattern(word.Text) && height < strongRatio*avgHeight {
		return 0, false
	}

	ratio := height / avgHeight
	switch {
	case ratio >= chapterRatio:
		return 1, true
	case ratio >= strongRatio:
		return 2, true
	default:
		return 3, true
	}
}

func isHeadingPattern(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	for _, pattern := range headingPatterns {
		if pattern.MatchString(trimmed) {
			return true
		}
	}
	return false
}

func averageWordHeight(words []models.OcrWord) float64 {
	if len(words) == 0 {
		return 0
	}
	total := 0
	for i := range words {
		total += words[i].Height()
	}
	return float64(total) / float64(len(words))
}
