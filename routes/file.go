package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sehee-xx/DO-DREAM-sub000/handlers"
)

func RegisterFileRoutes(app *fiber.App, handler *handlers.FileHandler) {
	files := app.Group("api/files")
	files.Post("/upload", handler.UploadFile)
	files.Post("/presigned-url", handler.RequestPresignedUpload)
	files.Get("/", handler.ListFiles)

	files.Post("/:file_id/process", handler.StartProcessing)
	files.Get("/:file_id/status", handler.GetStatus)
	files.Get("/:file_id/pages", handler.GetPages)
	files.Get("/:file_id/text", handler.GetFullText)
	files.Get("/:file_id/structure", handler.GetStructure)
	files.Get("/:file_id/sections", handler.GetSections)
	files.Get("/:file_id/download-url", handler.GetDownloadURL)
}
