package models

// ClovaOcrRequest is the JSON "message" part of the multipart request sent
// to the Clova OCR engine.
type ClovaOcrRequest struct {
	Version   string             `json:"version"`
	RequestID string             `json:"requestId"`
	Timestamp int64              `json:"timestamp"` // unix millis
	Images    []ClovaOcrReqImage `json:"images"`
}

type ClovaOcrReqImage struct {
	Format string `json:"format"`
	Name   string `json:"name"`
}

// ClovaOcrResponse is the subset of the engine response this service
// consumes. Anything outside this shape is treated as an engine failure.
type ClovaOcrResponse struct {
	Images []ClovaOcrImage `json:"images"`
}

type ClovaOcrImage struct {
	InferResult string          `json:"inferResult"` // "SUCCESS" or failure marker
	Message     string          `json:"message"`
	Fields      []ClovaOcrField `json:"fields"`
}

type ClovaOcrField struct {
	InferText       string            `json:"inferText"`
	InferConfidence float64           `json:"inferConfidence"`
	BoundingPoly    ClovaBoundingPoly `json:"boundingPoly"`
}

type ClovaBoundingPoly struct {
	Vertices []ClovaVertex `json:"vertices"`
}

type ClovaVertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
