package testutil

import (
	"context"
	"sync"

	"github.com/questx-lab/ledger/pkg/errorx"
	"github.com/questx-lab/ledger/pkg/pubsub"
)

type MockPublisher struct {
	PublishFunc func(context.Context, string, *pubsub.Pack) error
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, pack)
	}

	return errorx.New(errorx.NotImplemented, "Not implemented")
}

type PublishedMessage struct {
	Topic string
	Pack  *pubsub.Pack
}

// RecordingPublisher keeps every published message in order.
type RecordingPublisher struct {
	mutex    sync.Mutex
	Messages []PublishedMessage
}

func (p *RecordingPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.Messages = append(p.Messages, PublishedMessage{Topic: topic, Pack: pack})
	return nil
}
