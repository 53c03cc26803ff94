package models

import "time"

type OcrEventType string

const (
	EventOcrProcessing OcrEventType = "processing"
	EventOcrCompleted  OcrEventType = "completed"
	EventOcrFailed     OcrEventType = "failed"
)

type OcrProgressInfo struct {
	PagesAttempted int `json:"pages_attempted"`
	PagesSucceeded int `json:"pages_succeeded"`
	TotalPages     int `json:"total_pages"`
}

type OcrEvent struct {
	Type      OcrEventType     `json:"type"`
	FileID    uint             `json:"file_id"`
	Status    OcrStatus        `json:"status"`
	Message   string           `json:"message,omitempty"`
	Progress  *OcrProgressInfo `json:"progress,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}
