package services

import (
	"testing"

	"github.com/sehee-xx/DO-DREAM-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func word(text string, height int) models.OcrWord {
	return models.OcrWord{Text: text, Y1: 100, Y3: 100 + height}
}

func pageWith(pageNumber int, words ...models.OcrWord) *models.OcrPage {
	return &models.OcrPage{PageNumber: pageNumber, Words: words}
}

func bodyWords(n, height int) []models.OcrWord {
	words := make([]models.OcrWord, n)
	for i := range words {
		words[i] = word("body", height)
	}
	return words
}

func TestDetectSectionsLevels(t *testing.T) {
	// ten body words of height 10 pin the page average near 10, so the
	// oversized words land in distinct level buckets
	body := bodyWords(10, 10)

	chapter := word("제 1 장 서론", 40)   // ratio ~3.1
	section := word("plain big", 25) // ratio ~2.2, no pattern needed at this size

	page1 := pageWith(1, append(append([]models.OcrWord{}, body...), chapter)...)
	page2 := pageWith(2, append(append([]models.OcrWord{}, body...), section)...)

	sections := DetectSections(7, []*models.OcrPage{page1, page2})
	require.Len(t, sections, 2)

	assert.Equal(t, "제 1 장 서론", sections[0].Title)
	assert.Equal(t, 1, sections[0].Level)
	assert.Equal(t, 1, sections[0].StartPage)
	assert.Equal(t, 1, sections[0].EndPage)
	assert.Equal(t, 40, sections[0].FontSize)
	assert.Equal(t, uint(7), sections[0].UploadedFileID)

	assert.Equal(t, "plain big", sections[1].Title)
	assert.Equal(t, 2, sections[1].Level)
	assert.Equal(t, 2, sections[1].StartPage)
}

func TestDetectSectionsOrderIsGlobal(t *testing.T) {
	body := bodyWords(10, 10)

	page1 := pageWith(1, append(append([]models.OcrWord{}, body...), word("1. Intro", 40), word("1-1 Background", 40))...)
	page2 := pageWith(3, append(append([]models.OcrWord{}, body...), word("2. Methods", 40))...)

	sections := DetectSections(1, []*models.OcrPage{page1, page2})
	require.Len(t, sections, 3)

	for i, s := range sections {
		assert.Equal(t, i, s.SectionOrder)
	}
	assert.Equal(t, 1, sections[0].StartPage)
	assert.Equal(t, 1, sections[1].StartPage)
	assert.Equal(t, 3, sections[2].StartPage)
}

func TestDetectSectionsDeterministic(t *testing.T) {
	body := bodyWords(8, 12)
	page := pageWith(1, append(append([]models.OcrWord{}, body...), word("[부록]", 30))...)

	first := DetectSections(1, []*models.OcrPage{page})
	second := DetectSections(1, []*models.OcrPage{page})

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, *first[i], *second[i])
	}
}

func TestDetectSectionsSkipsEmptyPages(t *testing.T) {
	sections := DetectSections(1, []*models.OcrPage{
		pageWith(1),
		pageWith(2, bodyWords(5, 10)...),
	})
	assert.Empty(t, sections)
}

func TestClassifyHeadingBoundaries(t *testing.T) {
	const avg = 10.0

	cases := []struct {
		name   string
		word   models.OcrWord
		level  int
		wantOk bool
	}{
		{"chapter at exactly 2.5x", word("whatever big", 25), 1, true},
		{"section at exactly 1.8x", word("no pattern here", 18), 2, true},
		{"patterned word at 1.4x", word("2. Methods", 14), 3, true},
		{"patterned word below 1.4x", word("2. Methods", 13), 0, false},
		{"plain word between 1.4x and 1.8x", word("just large", 16), 0, false},
		{"plain body word", word("body", 10), 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := tc.word
			level, ok := classifyHeading(&w, avg)
			assert.Equal(t, tc.wantOk, ok)
			assert.Equal(t, tc.level, level)
		})
	}
}

func TestIsHeadingPattern(t *testing.T) {
	matches := []string{
		"[부록]",
		"단원 3",
		"Chapter 1 Introduction",
		"chapter 12 overview",
		"IV. Results",
		"2. Methods",
		"제 1 장 서론",
		"제1장 개요",
		"1-2 개요",
		"3) 실험",
	}
	for _, text := range matches {
		assert.True(t, isHeadingPattern(text), "expected match: %q", text)
	}

	misses := []string{
		"",
		"   ",
		"plain text",
		"see chapter 5 for details", // substring only
		"trailing [bracket",
	}
	for _, text := range misses {
		assert.False(t, isHeadingPattern(text), "expected no match: %q", text)
	}
}

func TestAverageWordHeight(t *testing.T) {
	assert.Equal(t, 0.0, averageWordHeight(nil))
	assert.InDelta(t, 15.0, averageWordHeight([]models.OcrWord{word("a", 10), word("b", 20)}), 0.001)
}
