package bootstrap

import (
	"github.com/sehee-xx/DO-DREAM-sub000/config"
	"github.com/sehee-xx/DO-DREAM-sub000/pkg/logging"
)

type App struct {
	Cfg            *config.Config
	Infrastructure *Infrastructure
	Repositories   *Repositories
	Services       *Services
	Handlers       *Handlers
	Workers        *OcrWorkerPool
}

func NewApp(cfg *config.Config) (*App, error) {
	app := &App{Cfg: cfg}
	infra, err := NewInfrastructure(cfg)
	if err != nil {
		logging.Logger.Error("fail NewInfrastructure", "error", err)
		return nil, err
	}
	app.Infrastructure = infra

	// repos
	repos := NewRepositories(infra.DB)
	app.Repositories = repos

	// services
	services := NewServices(cfg, repos, infra)
	app.Services = services

	handlers := NewHandlers(services, infra)
	app.Handlers = handlers

	// worker pool draining the ocr job queue
	app.Workers = NewOcrWorkerPool(infra.Queue, services.PipelineService, cfg.OcrWorkerCount)

	return app, nil
}

// Shutdown stops the workers first so no pipeline is cut off mid-run, then
// releases the infrastructure.
func (a *App) Shutdown() error {
	if a == nil {
		return nil
	}
	if a.Workers != nil {
		a.Workers.Stop()
	}
	if a.Infrastructure != nil {
		if err := a.Infrastructure.Shutdown(); err != nil {
			return err
		}
	}
	return nil
}
