package services

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/sehee-xx/DO-DREAM-sub000/pkg/logging"
)

const (
	rasterDPI   = 300
	imageFormat = "png"
)

// RasterizeService converts a PDF into one lossless image per page at a
// fixed resolution. Images are written as temp artifacts; the service never
// deletes the artifacts of a successful call, that ownership passes to the
// caller. On a mid-run failure everything produced so far is removed before
// the error propagates.
type RasterizeService struct {
	temp TempArtifactStore
}

func NewRasterizeService(temp TempArtifactStore) *RasterizeService {
	return &RasterizeService{temp: temp}
}

func (s *RasterizeService) ConvertPDFToImages(ctx context.Context, pdfPath string) ([]string, error) {
	// structural validation up front gives a clearer error than a renderer
	// crash halfway through a corrupt file
	if err := api.ValidateFile(pdfPath, nil); err != nil {
		return nil, &ConversionError{Err: fmt.Errorf("invalid pdf: %w", err)}
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, &ConversionError{Err: err}
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	logging.Logger.Info("Converting PDF to images", "pages", pageCount)

	var imagePaths []string
	cleanup := func() {
		for _, p := range imagePaths {
			s.temp.DeleteTemp(p)
		}
	}

	for pageIndex := 0; pageIndex < pageCount; pageIndex++ {
		if err := ctx.Err(); err != nil {
			cleanup()
			return nil, &ConversionError{Err: err}
		}

		img, err := doc.ImageDPI(pageIndex, rasterDPI)
		if err != nil {
			cleanup()
			return nil, &ConversionError{Err: fmt.Errorf("failed to render page %d: %w", pageIndex+1, err)}
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			cleanup()
			return nil, &ConversionError{Err: fmt.Errorf("failed to encode page %d: %w", pageIndex+1, err)}
		}

		prefix := fmt.Sprintf("page_%d", pageIndex+1)
		path, err := s.temp.SaveTemp(buf.Bytes(), prefix, imageFormat)
		if err != nil {
			cleanup()
			return nil, &ConversionError{Err: err}
		}
		imagePaths = append(imagePaths, path)
	}

	logging.Logger.Info("PDF conversion completed", "pages", pageCount)
	return imagePaths, nil
}

// PageCount reports how many pages a stored PDF has without rendering it.
func (s *RasterizeService) PageCount(pdfPath string) (int, error) {
	count, err := api.PageCountFile(pdfPath)
	if err != nil {
		return 0, &ConversionError{Err: err}
	}
	return count, nil
}
