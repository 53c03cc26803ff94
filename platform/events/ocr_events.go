package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sehee-xx/DO-DREAM-sub000/models"
	"github.com/sehee-xx/DO-DREAM-sub000/pkg/logging"
)

const (
	OcrEventChannel = "ocr:events"
)

// EventPublisher broadcasts pipeline status changes over redis pub/sub so
// websocket clients can follow a file's run without polling.
type EventPublisher struct {
	redisClient *redis.Client
}

func NewEventPublisher(redisClient *redis.Client) *EventPublisher {
	return &EventPublisher{redisClient: redisClient}
}

func (p *EventPublisher) PublishOcrEvent(event *models.OcrEvent) error {
	event.Timestamp = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		logging.Logger.Error("fail PublishOcrEvent", "error", err)
		return err
	}
	ctx := context.Background()
	if err := p.redisClient.Publish(ctx, OcrEventChannel, string(data)).Err(); err != nil {
		logging.Logger.Error("fail PublishOcrEvent", "error", err)
		return err
	}
	return nil
}

func (p *EventPublisher) SubscribeOcrEvents(ctx context.Context) (<-chan *models.OcrEvent, error) {
	pubsub := p.redisClient.Subscribe(ctx, OcrEventChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		logging.Logger.Error("fail SubscribeOcrEvents", "error", err)
		return nil, err
	}
	ch := make(chan *models.OcrEvent, 100)

	go func() {
		defer close(ch)
		defer func() {
			if err := pubsub.Close(); err != nil {
				logging.Logger.Error("fail SubscribeOcrEvents", "error", err)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-pubsub.Channel():
				var event models.OcrEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					logging.Logger.Error("Failed to unmarshal event", "error", err)
					continue
				}

				select {
				case ch <- &event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
