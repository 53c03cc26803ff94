package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sehee-xx/DO-DREAM-sub000/config"
	"github.com/sehee-xx/DO-DREAM-sub000/models"
	"github.com/sehee-xx/DO-DREAM-sub000/pkg/logging"
)

const clovaProtocolVersion = "V2"

// ClovaOcrService sends one page image per call to the Clova OCR engine and
// parses the word fields out of the response. The service does not retry;
// the pipeline decides what a failed page means for the run.
type ClovaOcrService struct {
	client    *http.Client
	apiURL    string
	secretKey string
}

func NewClovaOcrService(cfg *config.Config) *ClovaOcrService {
	return &ClovaOcrService{
		client:    &http.Client{Timeout: cfg.OcrTimeout},
		apiURL:    cfg.OcrApiURL,
		secretKey: cfg.OcrSecretKey,
	}
}

func (s *ClovaOcrService) ProcessImage(ctx context.Context, imagePath string, pageNumber int) (*models.PageOcrResult, error) {
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, &OcrServiceError{Page: pageNumber, Err: err}
	}

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(imagePath))
	if err != nil {
		return nil, &OcrServiceError{Page: pageNumber, Err: err}
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, &OcrServiceError{Page: pageNumber, Err: err}
	}

	message, err := s.buildRequestMessage()
	if err != nil {
		return nil, &OcrServiceError{Page: pageNumber, Err: err}
	}
	if err := writer.WriteField("message", message); err != nil {
		return nil, &OcrServiceError{Page: pageNumber, Err: err}
	}
	if err := writer.Close(); err != nil {
		return nil, &OcrServiceError{Page: pageNumber, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, body)
	if err != nil {
		return nil, &OcrServiceError{Page: pageNumber, Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-OCR-SECRET", s.secretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &OcrServiceError{Page: pageNumber, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Logger.Warn("fail closing ocr response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &OcrServiceError{
			Page: pageNumber,
			Err:  fmt.Errorf("ocr engine returned status %d: %s", resp.StatusCode, string(snippet)),
		}
	}

	var ocrResp models.ClovaOcrResponse
	if err := json.NewDecoder(resp.Body).Decode(&ocrResp); err != nil {
		return nil, &OcrServiceError{Page: pageNumber, Err: fmt.Errorf("malformed ocr response: %w", err)}
	}

	result, err := parseOcrResponse(&ocrResp, pageNumber)
	if err != nil {
		return nil, err
	}

	logging.Logger.Info("OCR completed",
		"page", pageNumber,
		"chars", len(result.FullText),
		"words", len(result.Words),
	)
	return result, nil
}

func parseOcrResponse(resp *models.ClovaOcrResponse, pageNumber int) (*models.PageOcrResult, error) {
	if len(resp.Images) == 0 {
		return nil, &OcrServiceError{Page: pageNumber, Err: fmt.Errorf("empty ocr response")}
	}

	image := resp.Images[0]
	if image.InferResult != "SUCCESS" {
		return nil, &OcrServiceError{
			Page: pageNumber,
			Err:  fmt.Errorf("ocr inference failed: %s", image.Message),
		}
	}

	// a blank page is a valid result, not an error
	if len(image.Fields) == 0 {
		return &models.PageOcrResult{
			PageNumber: pageNumber,
			FullText:   "",
			Words:      []models.WordInfo{},
		}, nil
	}

	texts := make([]string, 0, len(image.Fields))
	words := make([]models.WordInfo, 0, len(image.Fields))
	for _, field := range image.Fields {
		texts = append(texts, field.InferText)

		vertices := field.BoundingPoly.Vertices
		if len(vertices) < 4 {
			continue
		}
		words = append(words, models.WordInfo{
			Text:       field.InferText,
			Confidence: field.InferConfidence,
			X1:         int(vertices[0].X),
			Y1:         int(vertices[0].Y),
			X2:         int(vertices[1].X),
			Y2:         int(vertices[1].Y),
			X3:         int(vertices[2].X),
			Y3:         int(vertices[2].Y),
			X4:         int(vertices[3].X),
			Y4:         int(vertices[3].Y),
		})
	}

	return &models.PageOcrResult{
		PageNumber: pageNumber,
		FullText:   strings.Join(texts, " "),
		Words:      words,
	}, nil
}

func (s *ClovaOcrService) buildRequestMessage() (string, error) {
	msg := models.ClovaOcrRequest{
		Version:   clovaProtocolVersion,
		RequestID: uuid.New().String(),
		Timestamp: time.Now().UnixMilli(),
		Images: []models.ClovaOcrReqImage{
			{Format: imageFormat, Name: "image"},
		},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
