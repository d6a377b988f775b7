package pubsub

import (
	"context"
	"time"
)

// SubscribeHandler processes one message. A returned error means the message was not handled
// and will be delivered again.
type SubscribeHandler func(ctx context.Context, topic string, pack *Pack, t time.Time) error

type Subscriber interface {
	Subscribe(context.Context)
	Stop(ctx context.Context) error
}

// Router dispatches messages to the handler registered for their topic.
type Router map[string]SubscribeHandler

func (r Router) Topics() []string {
	topics := make([]string, 0, len(r))
	for topic := range r {
		topics = append(topics, topic)
	}
	return topics
}

func (r Router) Handle(ctx context.Context, topic string, pack *Pack, t time.Time) error {
	handler, ok := r[topic]
	if !ok {
		return nil
	}
	return handler(ctx, topic, pack, t)
}
