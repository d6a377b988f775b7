package pubsub

import "context"

// Pack is one event. Key is the record path the event belongs to and decides its partition.
type Pack struct {
	Key []byte
	Msg []byte
}

type Publisher interface {
	Publish(ctx context.Context, topic string, pack *Pack) error
}
