package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sehee-xx/DO-DREAM-sub000/models"
	"github.com/sehee-xx/DO-DREAM-sub000/services"
)

type FileHandler struct {
	fileService *services.FileService
}

func NewFileHandler(fileService *services.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// UploadFile accepts a multipart PDF, stores it and queues OCR.
func (h *FileHandler) UploadFile(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "File required"})
	}
	uploaderID := uint(c.QueryInt("uploader_id", 0))

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Cannot read uploaded file"})
	}
	defer src.Close()

	resp, err := h.fileService.UploadPDF(
		c.Context(),
		uploaderID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		src,
	)
	if err != nil {
		return uploadError(c, err)
	}
	return c.Status(201).JSON(resp)
}

// RequestPresignedUpload hands the client a presigned POST for a direct
// bucket upload.
func (h *FileHandler) RequestPresignedUpload(c *fiber.Ctx) error {
	var req models.PresignedUploadReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}

	resp, err := h.fileService.RequestPresignedUpload(c.Context(), &req)
	if err != nil {
		return uploadError(c, err)
	}
	return c.JSON(resp)
}

// StartProcessing queues an OCR run for an uploaded file.
func (h *FileHandler) StartProcessing(c *fiber.Ctx) error {
	fileID, err := fileIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid file id"})
	}

	if err := h.fileService.StartProcessing(c.Context(), fileID); err != nil {
		switch {
		case errors.Is(err, services.ErrFileNotFound):
			return c.Status(404).JSON(fiber.Map{"error": "File not found"})
		case errors.Is(err, services.ErrCannotStart):
			return c.Status(409).JSON(fiber.Map{"error": "File cannot be processed in its current state"})
		case errors.Is(err, services.ErrNotUploadedYet):
			return c.Status(409).JSON(fiber.Map{"error": "File has not been uploaded yet"})
		default:
			return c.Status(500).JSON(fiber.Map{"error": "Failed to queue processing"})
		}
	}
	return c.Status(202).JSON(fiber.Map{
		"file_id": fileID,
		"message": "OCR queued",
	})
}

func (h *FileHandler) GetStatus(c *fiber.Ctx) error {
	fileID, err := fileIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid file id"})
	}

	resp, err := h.fileService.GetStatus(c.Context(), fileID)
	if err != nil {
		return notFoundOrInternal(c, err)
	}
	return c.JSON(resp)
}

func (h *FileHandler) GetPages(c *fiber.Ctx) error {
	fileID, err := fileIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid file id"})
	}

	pages, err := h.fileService.GetPages(c.Context(), fileID)
	if err != nil {
		return notFoundOrInternal(c, err)
	}
	return c.JSON(fiber.Map{
		"file_id": fileID,
		"pages":   pages,
	})
}

func (h *FileHandler) GetFullText(c *fiber.Ctx) error {
	fileID, err := fileIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid file id"})
	}

	text, err := h.fileService.GetFullText(c.Context(), fileID)
	if err != nil {
		if errors.Is(err, services.ErrNotCompleted) {
			return c.Status(409).JSON(fiber.Map{"error": "OCR has not completed for this file"})
		}
		return notFoundOrInternal(c, err)
	}
	return c.JSON(fiber.Map{
		"file_id":   fileID,
		"full_text": text,
	})
}

func (h *FileHandler) GetStructure(c *fiber.Ctx) error {
	fileID, err := fileIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid file id"})
	}

	resp, err := h.fileService.GetStructure(c.Context(), fileID)
	if err != nil {
		return notFoundOrInternal(c, err)
	}
	return c.JSON(resp)
}

func (h *FileHandler) GetSections(c *fiber.Ctx) error {
	fileID, err := fileIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid file id"})
	}
	level := c.QueryInt("level", 0)

	if level == 0 {
		resp, err := h.fileService.GetStructure(c.Context(), fileID)
		if err != nil {
			return notFoundOrInternal(c, err)
		}
		return c.JSON(resp.Sections)
	}

	sections, err := h.fileService.GetSectionsByLevel(c.Context(), fileID, level)
	if err != nil {
		if errors.Is(err, services.ErrInvalidLevel) {
			return c.Status(400).JSON(fiber.Map{"error": "Level must be 1, 2 or 3"})
		}
		return notFoundOrInternal(c, err)
	}
	return c.JSON(sections)
}

func (h *FileHandler) GetDownloadURL(c *fiber.Ctx) error {
	fileID, err := fileIDParam(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid file id"})
	}

	resp, err := h.fileService.GetDownloadURL(c.Context(), fileID)
	if err != nil {
		return notFoundOrInternal(c, err)
	}
	return c.JSON(resp)
}

func (h *FileHandler) ListFiles(c *fiber.Ctx) error {
	uploaderID := uint(c.QueryInt("uploader_id", 0))

	files, err := h.fileService.ListByUploader(c.Context(), uploaderID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to list files"})
	}
	return c.JSON(fiber.Map{"files": files})
}

func fileIDParam(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("file_id")
	if err != nil || id <= 0 {
		return 0, errors.New("invalid file id")
	}
	return uint(id), nil
}

func uploadError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrEmptyFileName):
		return c.Status(400).JSON(fiber.Map{"error": "File name required"})
	case errors.Is(err, services.ErrFileTooLarge):
		return c.Status(400).JSON(fiber.Map{"error": "File too large"})
	case errors.Is(err, services.ErrNotPdf):
		return c.Status(400).JSON(fiber.Map{"error": "Only PDF files allowed"})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "Upload failed"})
	}
}

func notFoundOrInternal(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrFileNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "File not found"})
	}
	return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
}
