package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFileKeyDateBased(t *testing.T) {
	fkg := NewFileKeyGenerator(StrategyDateBased, "pdfs")

	key := fkg.GenerateFileKey("수학 교과서.pdf", "")

	parts := strings.Split(key, "/")
	require.Len(t, parts, 5)
	assert.Equal(t, "pdfs", parts[0])
	assert.Equal(t, time.Now().Format("2006"), parts[1])
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.NotContains(t, key, " ")
}

func TestGenerateFileKeyUUIDBased(t *testing.T) {
	fkg := NewFileKeyGenerator(StrategyUUIDBased, "pdfs")

	first := fkg.GenerateFileKey("doc.pdf", "")
	second := fkg.GenerateFileKey("doc.pdf", "")

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(first, "pdfs/"))
}

func TestCleanFilenameSanitizes(t *testing.T) {
	fkg := NewFileKeyGenerator(StrategyUUIDBased, "pdfs")

	cases := map[string]string{
		"my file.pdf":        "my_file.pdf",
		"../../escape.pdf":   "escape.pdf",
		"weird***chars.pdf":  "weird_chars.pdf",
		"한글 이름.pdf":          "한글_이름.pdf",
		"....pdf":            "document.pdf",
		"UPPER Case Doc.PDF": "UPPER_Case_Doc.pdf",
	}
	for input, want := range cases {
		assert.Equal(t, want, fkg.cleanFilename(input), "input: %q", input)
	}
}

func TestCleanFilenameTruncatesLongNames(t *testing.T) {
	fkg := NewFileKeyGenerator(StrategyUUIDBased, "pdfs")

	long := strings.Repeat("a", 200) + ".pdf"
	cleaned := fkg.cleanFilename(long)
	assert.LessOrEqual(t, len(cleaned), 50+len(".pdf"))
	assert.True(t, strings.HasSuffix(cleaned, ".pdf"))
}
