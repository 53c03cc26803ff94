package queue

import (
	"time"

	"github.com/sehee-xx/DO-DREAM-sub000/platform/cache"
)

type MessageQueueService struct {
	MQ cache.MessageQueue
}

func NewMessageService(mq cache.MessageQueue) cache.MessageQueue {
	return &MessageQueueService{MQ: mq}
}

func (mq *MessageQueueService) PushToQueue(queueName string, value interface{}) error {
	return mq.MQ.PushToQueue(queueName, value)
}

func (mq *MessageQueueService) PopFromQueue(queueName string) (string, error) {
	return mq.MQ.PopFromQueue(queueName)
}

func (mq *MessageQueueService) BPopFromQueue(queueName string, timeout time.Duration) (string, error) {
	return mq.MQ.BPopFromQueue(queueName, timeout)
}
