package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sehee-xx/DO-DREAM-sub000/config"
	"github.com/sehee-xx/DO-DREAM-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page_1.png")
	require.NoError(t, os.WriteFile(path, []byte("not really a png"), 0o644))
	return path
}

func newTestOcrService(serverURL string) *ClovaOcrService {
	return NewClovaOcrService(&config.Config{
		OcrApiURL:    serverURL,
		OcrSecretKey: "test-secret",
		OcrTimeout:   5 * time.Second,
	})
}

func ocrResponse(image models.ClovaOcrImage) models.ClovaOcrResponse {
	return models.ClovaOcrResponse{Images: []models.ClovaOcrImage{image}}
}

func quad(x1, y1, x3, y3 float64) models.ClovaBoundingPoly {
	return models.ClovaBoundingPoly{Vertices: []models.ClovaVertex{
		{X: x1, Y: y1}, {X: x3, Y: y1}, {X: x3, Y: y3}, {X: x1, Y: y3},
	}}
}

func TestProcessImageSuccess(t *testing.T) {
	var gotSecret string
	var gotMessage models.ClovaOcrRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("X-OCR-SECRET")

		require.NoError(t, r.ParseMultipartForm(32<<20))
		_, _, err := r.FormFile("file")
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("message")), &gotMessage))

		resp := ocrResponse(models.ClovaOcrImage{
			InferResult: "SUCCESS",
			Fields: []models.ClovaOcrField{
				{InferText: "제", InferConfidence: 0.99, BoundingPoly: quad(10, 20, 30, 60)},
				{InferText: "1", InferConfidence: 0.98, BoundingPoly: quad(35, 20, 45, 60)},
				{InferText: "장", InferConfidence: 0.97, BoundingPoly: quad(50, 20, 70, 60)},
			},
		})
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	svc := newTestOcrService(server.URL)
	result, err := svc.ProcessImage(context.Background(), writeTestImage(t), 3)
	require.NoError(t, err)

	assert.Equal(t, "test-secret", gotSecret)
	assert.Equal(t, "V2", gotMessage.Version)
	assert.NotEmpty(t, gotMessage.RequestID)
	assert.NotZero(t, gotMessage.Timestamp)
	require.Len(t, gotMessage.Images, 1)
	assert.Equal(t, "png", gotMessage.Images[0].Format)

	assert.Equal(t, 3, result.PageNumber)
	assert.Equal(t, "제 1 장", result.FullText)
	require.Len(t, result.Words, 3)
	assert.Equal(t, "제", result.Words[0].Text)
	assert.Equal(t, 10, result.Words[0].X1)
	assert.Equal(t, 20, result.Words[0].Y1)
	assert.Equal(t, 30, result.Words[0].X3)
	assert.Equal(t, 60, result.Words[0].Y3)
}

func TestProcessImageSkipsDegenerateQuads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := ocrResponse(models.ClovaOcrImage{
			InferResult: "SUCCESS",
			Fields: []models.ClovaOcrField{
				{InferText: "good", BoundingPoly: quad(0, 0, 10, 10)},
				{InferText: "broken", BoundingPoly: models.ClovaBoundingPoly{
					Vertices: []models.ClovaVertex{{X: 1, Y: 2}, {X: 3, Y: 4}},
				}},
			},
		})
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	svc := newTestOcrService(server.URL)
	result, err := svc.ProcessImage(context.Background(), writeTestImage(t), 1)
	require.NoError(t, err)

	// the broken quad still contributes text, just no word geometry
	assert.Equal(t, "good broken", result.FullText)
	require.Len(t, result.Words, 1)
	assert.Equal(t, "good", result.Words[0].Text)
}

func TestProcessImageEmptyFieldsIsBlankPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ocrResponse(models.ClovaOcrImage{InferResult: "SUCCESS"}))
	}))
	defer server.Close()

	svc := newTestOcrService(server.URL)
	result, err := svc.ProcessImage(context.Background(), writeTestImage(t), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, result.PageNumber)
	assert.Empty(t, result.FullText)
	assert.Empty(t, result.Words)
}

func TestProcessImageInferFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ocrResponse(models.ClovaOcrImage{
			InferResult: "ERROR",
			Message:     "unreadable image",
		}))
	}))
	defer server.Close()

	svc := newTestOcrService(server.URL)
	_, err := svc.ProcessImage(context.Background(), writeTestImage(t), 4)
	require.Error(t, err)

	var ocrErr *OcrServiceError
	require.ErrorAs(t, err, &ocrErr)
	assert.Equal(t, 4, ocrErr.Page)
	assert.Contains(t, err.Error(), "unreadable image")
}

func TestProcessImageEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.ClovaOcrResponse{})
	}))
	defer server.Close()

	svc := newTestOcrService(server.URL)
	_, err := svc.ProcessImage(context.Background(), writeTestImage(t), 1)

	var ocrErr *OcrServiceError
	require.ErrorAs(t, err, &ocrErr)
}

func TestProcessImageMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not json"))
	}))
	defer server.Close()

	svc := newTestOcrService(server.URL)
	_, err := svc.ProcessImage(context.Background(), writeTestImage(t), 1)

	var ocrErr *OcrServiceError
	require.ErrorAs(t, err, &ocrErr)
}

func TestProcessImageHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"invalid secret"}`))
	}))
	defer server.Close()

	svc := newTestOcrService(server.URL)
	_, err := svc.ProcessImage(context.Background(), writeTestImage(t), 6)

	var ocrErr *OcrServiceError
	require.ErrorAs(t, err, &ocrErr)
	assert.Equal(t, 6, ocrErr.Page)
	assert.Contains(t, err.Error(), "403")
}

func TestProcessImageTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	svc := newTestOcrService(server.URL)
	_, err := svc.ProcessImage(context.Background(), writeTestImage(t), 1)

	var ocrErr *OcrServiceError
	require.ErrorAs(t, err, &ocrErr)
}

func TestProcessImageMissingFile(t *testing.T) {
	svc := newTestOcrService("http://localhost:0")
	_, err := svc.ProcessImage(context.Background(), filepath.Join(t.TempDir(), "missing.png"), 1)

	var ocrErr *OcrServiceError
	require.ErrorAs(t, err, &ocrErr)
}
