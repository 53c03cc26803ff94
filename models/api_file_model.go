package models

import "time"

type PresignedUploadReq struct {
	FileName    string `json:"file_name"`
	FileSize    int64  `json:"file_size"`
	ContentType string `json:"content_type"`
	UploaderID  uint   `json:"uploader_id"`
}

type PresignedUploadResp struct {
	FileID    uint              `json:"file_id"`
	UploadURL string            `json:"upload_url"`
	FileKey   string            `json:"file_key"`
	Fields    map[string]string `json:"fields,omitempty"`
	Expires   time.Time         `json:"expires"`
	Provider  string            `json:"provider"` // "minio" or "s3"
}

type FileUploadResp struct {
	FileID           uint      `json:"file_id"`
	OriginalFileName string    `json:"original_file_name"`
	FileSize         int64     `json:"file_size"`
	OcrStatus        OcrStatus `json:"ocr_status"`
	Message          string    `json:"message,omitempty"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

type FileStatusResp struct {
	FileID         uint      `json:"file_id"`
	OcrStatus      OcrStatus `json:"ocr_status"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	PagesAttempted int       `json:"pages_attempted"`
	PagesSucceeded int       `json:"pages_succeeded"`
	Message        string    `json:"message"`
}

type DownloadUrlResp struct {
	FileID      uint   `json:"file_id"`
	FileName    string `json:"file_name"`
	DownloadURL string `json:"download_url"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
}

type DocumentStructureResp struct {
	FileID     uint               `json:"file_id"`
	FileName   string             `json:"file_name"`
	TotalPages int                `json:"total_pages"`
	Sections   []*DocumentSection `json:"sections"`
	Message    string             `json:"message"`
}

// OcrJob is the queue payload for one pipeline run.
type OcrJob struct {
	FileID uint `json:"file_id"`
}
