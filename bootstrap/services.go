package bootstrap

import (
	"github.com/sehee-xx/DO-DREAM-sub000/config"
	"github.com/sehee-xx/DO-DREAM-sub000/services"
)

type Services struct {
	FileService     *services.FileService
	RasterizeSvc    *services.RasterizeService
	OcrEngine       *services.ClovaOcrService
	HeadingService  *services.HeadingDetectionService
	PipelineService *services.OcrPipelineService
}

func NewServices(cfg *config.Config, repos *Repositories, infra *Infrastructure) *Services {
	res := &Services{}

	rasterizeSvc := services.NewRasterizeService(infra.TempStore)
	res.RasterizeSvc = rasterizeSvc

	ocrEngine := services.NewClovaOcrService(cfg)
	res.OcrEngine = ocrEngine

	headingService := services.NewHeadingDetectionService(repos.SectionRepository)
	res.HeadingService = headingService

	pipelineService := services.NewOcrPipelineService(
		repos.FileRepository,
		repos.PageRepository,
		rasterizeSvc,
		ocrEngine,
		infra.Storage,
		infra.TempStore,
		headingService,
		infra.EventPublisher,
	)
	res.PipelineService = pipelineService

	fileService := services.NewFileService(
		cfg,
		repos.FileRepository,
		repos.PageRepository,
		repos.SectionRepository,
		infra.Storage,
		infra.Queue,
		infra.Cache,
	)
	res.FileService = fileService

	return res
}
