package services

import "fmt"

// ConversionError means the PDF itself could not be read or rendered.
// It is fatal for the whole run; the file goes to FAILED.
type ConversionError struct {
	Err error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("pdf conversion failed: %v", e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// OcrServiceError means the OCR call for one page failed (transport error,
// malformed response or a non-SUCCESS inference result). The pipeline skips
// the page and continues.
type OcrServiceError struct {
	Page int
	Err  error
}

func (e *OcrServiceError) Error() string {
	return fmt.Sprintf("ocr failed for page %d: %v", e.Page, e.Err)
}

func (e *OcrServiceError) Unwrap() error {
	return e.Err
}

// PersistenceError means a page-level database write failed. Recovered the
// same way as an OCR failure: the page is skipped, the run continues.
type PersistenceError struct {
	Page int
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist page %d: %v", e.Page, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
