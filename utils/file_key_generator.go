package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type FileKeyStrategy string

const (
	StrategyDateBased FileKeyStrategy = "date_based"
	StrategyUUIDBased FileKeyStrategy = "uuid_based"
)

// FileKeyGenerator builds object keys for uploaded PDFs. Keys never reuse
// the raw client filename; the cleaned name is only kept as a suffix so a
// bucket listing stays readable.
type FileKeyGenerator struct {
	strategy   FileKeyStrategy
	prefix     string
	maxNameLen int
}

func NewFileKeyGenerator(strategy FileKeyStrategy, prefix string) *FileKeyGenerator {
	return &FileKeyGenerator{
		strategy:   strategy,
		prefix:     prefix,
		maxNameLen: 50,
	}
}

func (fkg *FileKeyGenerator) GenerateFileKey(filename, userID string) string {
	switch fkg.strategy {
	case StrategyDateBased:
		return fkg.generateDateBasedKey(filename)
	default:
		return fkg.generateUUIDKey(filename)
	}
}

func (fkg *FileKeyGenerator) generateUUIDKey(filename string) string {
	uid := uuid.New().String()
	cleanName := fkg.cleanFilename(filename)

	return fmt.Sprintf("%s/%d_%s_%s", fkg.prefix, time.Now().Unix(), uid, cleanName)
}

// date-partitioned layout: pdfs/2025/08/29/<shortuuid>_<name>
func (fkg *FileKeyGenerator) generateDateBasedKey(filename string) string {
	now := time.Now()
	uid := uuid.New().String()[:8]
	cleanName := fkg.cleanFilename(filename)

	return fmt.Sprintf("%s/%s/%s/%s/%s_%s",
		fkg.prefix, now.Format("2006"), now.Format("01"), now.Format("02"), uid, cleanName)
}

func (fkg *FileKeyGenerator) cleanFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	baseName := strings.TrimSuffix(filename, filepath.Ext(filename))

	cleanBase := sanitizeFilename(baseName)

	if len(cleanBase) > fkg.maxNameLen {
		cleanBase = cleanBase[:fkg.maxNameLen]
		cleanBase = trimPartialUTF8(cleanBase)
	}

	if cleanBase == "" || cleanBase == "_" {
		cleanBase = "document"
	}

	return cleanBase + ext
}

var (
	unsafeChars  = regexp.MustCompile(`[^\p{L}\p{N}_\-.]`)
	repeatedSeps = regexp.MustCompile(`[_\-.]{2,}`)
)

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeChars.ReplaceAllString(name, "_")
	name = repeatedSeps.ReplaceAllString(name, "_")
	return strings.Trim(name, "_-.")
}

// trimPartialUTF8 drops a trailing multi-byte rune that was cut in half.
func trimPartialUTF8(s string) string {
	for i := len(s) - 1; i >= 0 && i >= len(s)-4; i-- {
		if s[i]&0x80 == 0 {
			return s
		}
		if s[i]&0xC0 == 0xC0 {
			return s[:i]
		}
	}
	return s
}
