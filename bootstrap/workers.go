package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sehee-xx/DO-DREAM-sub000/models"
	"github.com/sehee-xx/DO-DREAM-sub000/pkg/logging"
	"github.com/sehee-xx/DO-DREAM-sub000/platform/cache"
	"github.com/sehee-xx/DO-DREAM-sub000/services"
)

const jobPollTimeout = 5 * time.Second

// OcrWorkerPool drains the OCR job queue with a fixed number of workers.
// Each worker blocks on the queue, runs one pipeline at a time and keeps
// going until Stop is called.
type OcrWorkerPool struct {
	queue    cache.MessageQueue
	pipeline *services.OcrPipelineService
	workers  int

	quit chan struct{}
	wg   sync.WaitGroup
}

func NewOcrWorkerPool(queue cache.MessageQueue, pipeline *services.OcrPipelineService, workers int) *OcrWorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &OcrWorkerPool{
		queue:    queue,
		pipeline: pipeline,
		workers:  workers,
		quit:     make(chan struct{}),
	}
}

func (p *OcrWorkerPool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	logging.Logger.Info("OCR worker pool started", "workers", p.workers)
}

// Stop signals the workers and waits for in-flight jobs to finish.
func (p *OcrWorkerPool) Stop() {
	close(p.quit)
	p.wg.Wait()
	logging.Logger.Info("OCR worker pool stopped")
}

func (p *OcrWorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.quit:
			return
		default:
		}

		payload, err := p.queue.BPopFromQueue(services.QueueOcrJobs, jobPollTimeout)
		if err != nil {
			logging.Logger.Error("fail popping ocr job", "worker", id, "error", err)
			time.Sleep(time.Second)
			continue
		}
		if payload == "" {
			continue
		}

		var job models.OcrJob
		if err := json.Unmarshal([]byte(payload), &job); err != nil {
			logging.Logger.Error("discarding malformed ocr job", "worker", id, "payload", payload, "error", err)
			continue
		}

		if err := p.pipeline.Process(context.Background(), job.FileID); err != nil {
			if errors.Is(err, services.ErrAlreadyRunning) || errors.Is(err, services.ErrFileNotPending) {
				logging.Logger.Warn("dropping duplicate ocr job", "worker", id, "fileID", job.FileID, "error", err)
				continue
			}
			logging.Logger.Error("ocr job failed", "worker", id, "fileID", job.FileID, "error", err)
		}
	}
}
